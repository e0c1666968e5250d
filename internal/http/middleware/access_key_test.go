package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() (http.Handler, *int) {
	calls := new(int)
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	}), calls
}

func TestAccessKey_EmptyKey_OpenAccess(t *testing.T) {
	t.Parallel()

	next, calls := okHandler()
	h := AccessKey("")(next)

	// Открытый доступ: запрос проходит с любым ключом и без ключа.
	for _, target := range []string{"/pair?number=94771234567", "/pair?key=whatever"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Equal(t, 2, *calls)
}

func TestAccessKey_QueryKey_OK(t *testing.T) {
	t.Parallel()

	next, calls := okHandler()
	h := AccessKey("secret1")(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pair?key=secret1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, *calls)
}

func TestAccessKey_WrongKey_Denied(t *testing.T) {
	t.Parallel()

	next, calls := okHandler()
	h := AccessKey("secret1")(next)

	for _, target := range []string{"/pair?key=wrong", "/pair", "/?key="} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code, "target=%s", target)
		require.Equal(t, `Basic realm="PairSite"`, rec.Header().Get("WWW-Authenticate"))
		// Значение ключа не echo-ится в ответ.
		require.NotContains(t, rec.Body.String(), "secret1")
	}

	require.Equal(t, 0, *calls)
}

func TestAccessKey_BasicAuthPassword_OK(t *testing.T) {
	t.Parallel()

	next, calls := okHandler()
	h := AccessKey("secret1")(next)

	req := httptest.NewRequest(http.MethodGet, "/pair", nil)
	// Имя пользователя игнорируется, важен только пароль.
	req.SetBasicAuth("anyone", "secret1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, *calls)
}

func TestAccessKey_BasicAuthWrongPassword_Denied(t *testing.T) {
	t.Parallel()

	next, calls := okHandler()
	h := AccessKey("secret1")(next)

	req := httptest.NewRequest(http.MethodGet, "/pair", nil)
	req.SetBasicAuth("anyone", "wrong")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, 0, *calls)
}
