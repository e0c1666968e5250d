package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/wa-pairing-service/internal/service"
)

func TestToHTTP_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{service.ErrInvalidPhoneNumber, http.StatusBadRequest, "invalid_number"},
		{ErrAccessDenied, http.StatusUnauthorized, "unauthorized"},
		{service.ErrPairingInProgress, http.StatusConflict, "pairing_in_progress"},
		{service.ErrStorage, http.StatusInternalServerError, "storage"},
		{service.ErrProviderUnavailable, http.StatusInternalServerError, "provider_unavailable"},
		{service.ErrPairingRejected, http.StatusInternalServerError, "pairing_rejected"},
		{errors.New("unexpected"), http.StatusInternalServerError, "internal"},
		{nil, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		status, resp := ToHTTP(tc.err)
		require.Equal(t, tc.wantStatus, status, "err=%v", tc.err)
		require.Equal(t, tc.wantCode, resp.Code, "err=%v", tc.err)
		require.NotEmpty(t, resp.Message)
	}
}

func TestToHTTP_WrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("service/pairing/StartPairing: %w: %w",
		service.ErrProviderUnavailable, errors.New("dial tcp: timeout"))

	status, resp := ToHTTP(wrapped)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "provider_unavailable", resp.Code)
	// Детали нижележащей ошибки не утекают в message.
	require.NotContains(t, resp.Message, "dial tcp")
}

func TestWriteError_HTMLAndRequestID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/pair", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()

	WriteError(rec, req, service.ErrInvalidPhoneNumber)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_number", rec.Header().Get("X-Error-Code"))
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "94771234567")
	require.Contains(t, rec.Body.String(), "req-123")
}
