package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/wa-pairing-service/internal/errors"
	logctx "github.com/pribylovaa/wa-pairing-service/pkg/log"
)

// Index отдаёт форму сопряжения. Состояние не меняет.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, indexTmpl, struct{ Gated bool }{Gated: h.Gated})
}

// Pair запускает попытку сопряжения для номера из query и рендерит код.
// Каждая попытка (успех и отказ) попадает в операционный лог с номером и
// исходом; ключ доступа — никогда.
func (h *Handlers) Pair(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")

	sess, err := h.Service.StartPairing(r.Context(), number)
	if err != nil {
		logctx.From(r.Context()).Warn("pairing_attempt_failed",
			slog.String("phone", number),
			slog.String("err", err.Error()),
		)
		apierrors.WriteError(w, r, err)
		return
	}

	logctx.From(r.Context()).Info("pairing_attempt_ok",
		slog.String("phone", sess.Phone),
		slog.String("session_id", sess.ID.String()),
	)

	writeHTML(w, http.StatusOK, pairTmpl, struct{ Phone, Code string }{
		Phone: sess.Phone,
		Code:  sess.Code,
	})
}
