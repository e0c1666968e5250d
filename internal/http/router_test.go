package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/wa-pairing-service/internal/config"
	"github.com/pribylovaa/wa-pairing-service/internal/provider"
	"github.com/pribylovaa/wa-pairing-service/internal/service"
	"github.com/pribylovaa/wa-pairing-service/mocks"
)

type env struct {
	handler http.Handler
	svc     *service.Service
	store   *mocks.MockCredentialStore
	prov    *mocks.MockProvider
	ctrl    *gomock.Controller
}

func newEnv(t *testing.T, pairKey string) *env {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockCredentialStore(ctrl)
	pr := mocks.NewMockProvider(ctrl)

	svc := service.New(st, pr, config.PairingConfig{
		SessionDir: t.TempDir(),
		SessionTTL: time.Hour,
		ClientName: "Safari (macOS)",
	})

	handler := NewRouter(svc, Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout: 5 * time.Second,
		PairKey: pairKey,
	})

	return &env{handler: handler, svc: svc, store: st, prov: pr, ctrl: ctrl}
}

// expectIssue настраивает успешную выдачу кода и возвращает хэндл
// для ожиданий teardown.
func (e *env) expectIssue(code string) *mocks.MockClient {
	cl := mocks.NewMockClient(e.ctrl)

	e.store.EXPECT().Ensure(gomock.Any(), gomock.Any()).Return(nil)
	e.prov.EXPECT().NegotiateVersion(gomock.Any()).Return("2.3000.0", nil)
	e.prov.EXPECT().Open(gomock.Any(), gomock.Any()).Return(cl, nil)
	cl.EXPECT().OnCredentialUpdate(gomock.Any())
	cl.EXPECT().OnConnectionUpdate(gomock.Any())
	cl.EXPECT().RequestPairingCode(gomock.Any(), gomock.Any()).Return(code, nil)

	return cl
}

func (e *env) shutdown(cl *mocks.MockClient) {
	cl.EXPECT().Logout(gomock.Any()).Return(nil)
	cl.EXPECT().Close()
	e.svc.Shutdown(context.Background())
}

func (e *env) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// Сценарий A: гейт выключен, валидный номер — 200 и непустой код на странице.
func TestPair_OpenAccess_IssuesCode(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "")
	defer e.ctrl.Finish()

	cl := e.expectIssue("WXYZ-1234")

	rec := e.get("/pair?number=94771234567")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "WXYZ-1234")
	require.Contains(t, rec.Body.String(), "94771234567")

	e.shutdown(cl)
}

// Сценарий B: битый номер — 400 без единого внешнего вызова.
func TestPair_InvalidNumber_400(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "")
	defer e.ctrl.Finish()

	rec := e.get("/pair?number=abc123")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_number", rec.Header().Get("X-Error-Code"))
	require.Contains(t, rec.Body.String(), "94771234567") // подсказка с примером
}

// Сценарий C: ключ настроен, передан неверный — 401 без создания сессии.
func TestPair_WrongKey_401(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "secret1")
	defer e.ctrl.Finish()

	rec := e.get("/pair?number=94771234567&key=wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, `Basic realm="PairSite"`, rec.Header().Get("WWW-Authenticate"))
	require.NotContains(t, rec.Body.String(), "secret1")
}

// Сценарий D: ключ настроен и совпал — 200 с кодом.
func TestPair_CorrectKey_IssuesCode(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "secret1")
	defer e.ctrl.Finish()

	cl := e.expectIssue("QQQQ-RRRR")

	rec := e.get("/pair?number=94771234567&key=secret1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "QQQQ-RRRR")

	e.shutdown(cl)
}

// Сценарий E: провал согласования версии — 500 provider_unavailable,
// Ensure при этом уже успел отработать (каталог не остаётся полусозданным).
func TestPair_ProviderVersionFailure_500(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "")
	defer e.ctrl.Finish()

	gomock.InOrder(
		e.store.EXPECT().Ensure(gomock.Any(), gomock.Any()).Return(nil),
		e.prov.EXPECT().NegotiateVersion(gomock.Any()).Return("", provider.ErrUnavailable),
	)

	rec := e.get("/pair?number=94771234567")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "provider_unavailable", rec.Header().Get("X-Error-Code"))
}

// Повторный /pair во время активной сессии того же каталога — 409.
func TestPair_SecondAttemptWhileActive_409(t *testing.T) {
	t.Parallel()

	e := newEnv(t, "")
	defer e.ctrl.Finish()

	cl := e.expectIssue("SSSS-TTTT")

	require.Equal(t, http.StatusOK, e.get("/pair?number=94771234567").Code)

	rec := e.get("/pair?number=94770000000")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "pairing_in_progress", rec.Header().Get("X-Error-Code"))

	e.shutdown(cl)
}

// Форма: без гейта отдаётся всем; с гейтом — 401 без ключа и 200 с ключом.
func TestIndex_FormAndGate(t *testing.T) {
	t.Parallel()

	open := newEnv(t, "")
	defer open.ctrl.Finish()

	rec := open.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `action="/pair"`)

	gated := newEnv(t, "secret1")
	defer gated.ctrl.Finish()

	require.Equal(t, http.StatusUnauthorized, gated.get("/").Code)

	rec = gated.get("/?key=secret1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="key"`)
}
