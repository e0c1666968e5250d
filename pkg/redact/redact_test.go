package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey_NeverEchoesValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_KEY]", Key())
	require.Equal(t, "[REDACTED_CREDS]", Creds())
}
