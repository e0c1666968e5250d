// errors стандартизирует ответы об ошибках HTTP-слоя pairing-service.
// На вход он принимает доменную ошибку (sentinel из service/middleware),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный код;
//   - краткое безопасное message без утечки деталей.
//
// Страница сопряжения открывается в браузере, поэтому тело ошибки — HTML
// (в отличие от JSON-шлюза); машиночитаемый код дублируется в заголовке
// X-Error-Code.
package errors

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/pribylovaa/wa-pairing-service/internal/service"
)

// ErrAccessDenied — запрос не прошёл гейт доступа (ключ не передан или
// не совпал). Значение ключа никуда не логируется и не echo-ится.
var ErrAccessDenied = errors.New("access denied")

// APIError — единый формат ошибки для рендеринга.
type APIError struct {
	Code      string
	Message   string
	RequestID string
}

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<body>
<center style="font-family:system-ui,Arial;">
  <h2>Ошибка</h2>
  <p>{{.Message}}</p>
  {{if .RequestID}}<p style="color:gray;font-size:12px;">request_id: {{.RequestID}}</p>{{end}}
</center>
</body>
</html>
`))

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не маскировать баг успешным статусом;
//   - неизвестная ошибка - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, APIError) {
	if err == nil {
		return http.StatusInternalServerError, APIError{Code: "internal", Message: "internal error"}
	}

	switch {
	case errors.Is(err, service.ErrInvalidPhoneNumber):
		return http.StatusBadRequest, APIError{
			Code:    "invalid_number",
			Message: "Invalid phone number. Digits only, with country code, no '+'. Example: 94771234567",
		}
	case errors.Is(err, ErrAccessDenied):
		return http.StatusUnauthorized, APIError{
			Code:    "unauthorized",
			Message: "Unauthorized — provide key",
		}
	case errors.Is(err, service.ErrPairingInProgress):
		return http.StatusConflict, APIError{
			Code:    "pairing_in_progress",
			Message: "A pairing attempt for this account is already in progress. Try again later.",
		}
	case errors.Is(err, service.ErrStorage):
		return http.StatusInternalServerError, APIError{
			Code:    "storage",
			Message: "Server error (fs)",
		}
	case errors.Is(err, service.ErrProviderUnavailable):
		return http.StatusInternalServerError, APIError{
			Code:    "provider_unavailable",
			Message: "Provider unavailable. Try again in a minute.",
		}
	case errors.Is(err, service.ErrPairingRejected):
		return http.StatusInternalServerError, APIError{
			Code:    "pairing_rejected",
			Message: "Failed to generate pairing code. Check the number and try again.",
		}
	default:
		return http.StatusInternalServerError, APIError{Code: "internal", Message: "internal error"}
	}
}

// WriteError — хелпер для HTTP-хендлеров: пишет корректный статус и
// HTML-страницу ошибки, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id, чтобы оператор мог связать страницу с логами.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Error-Code", resp.Code)
	w.WriteHeader(status)
	_ = errorTmpl.Execute(w, resp)
}
