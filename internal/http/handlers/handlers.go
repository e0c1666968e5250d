// handlers — HTML-хендлеры страницы сопряжения.
// Здесь только разбор входа, делегирование в service и рендеринг;
// валидация номера и бизнес-логика находятся в пакете service.
package handlers

import (
	"html/template"
	"net/http"

	"github.com/pribylovaa/wa-pairing-service/internal/service"
)

// Handlers агрегирует зависимости HTML-слоя.
type Handlers struct {
	Service *service.Service
	// Gated подсказывает форме, что для /pair нужен ключ.
	Gated bool
}

func New(svc *service.Service, gated bool) *Handlers {
	return &Handlers{Service: svc, Gated: gated}
}

// writeHTML — единый ответ HTML с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeHTML(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = tmpl.Execute(w, data)
}
