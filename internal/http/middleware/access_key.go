package middleware

import (
	"crypto/subtle"
	"net/http"

	apierrors "github.com/pribylovaa/wa-pairing-service/internal/errors"
)

// AccessKey — гейт доступа к странице сопряжения: запрос пропускается,
// если ключ передан через query (?key=...) либо как пароль HTTP Basic
// (имя пользователя игнорируется).
//
// Пустой configured выключает проверку полностью — открытый доступ,
// явно небезопасный дефолт (сервис предупреждает об этом на старте).
// На отказ — 401 с WWW-Authenticate; никаких других побочных эффектов,
// значение ключа не логируется и не попадает в ответ.
func AccessKey(configured string) Middleware {
	return func(next http.Handler) http.Handler {
		if configured == "" {
			return next
		}

		secret := []byte(configured)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyMatches(r.URL.Query().Get("key"), secret) {
				next.ServeHTTP(w, r)
				return
			}

			if _, pass, ok := r.BasicAuth(); ok && keyMatches(pass, secret) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="PairSite"`)
			apierrors.WriteError(w, r, apierrors.ErrAccessDenied)
		})
	}
}

func keyMatches(supplied string, secret []byte) bool {
	if supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), secret) == 1
}
