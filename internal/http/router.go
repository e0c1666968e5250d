package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/wa-pairing-service/internal/http/handlers"
	"github.com/pribylovaa/wa-pairing-service/internal/http/middleware"
	"github.com/pribylovaa/wa-pairing-service/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// PairKey — секрет гейта доступа; пустой — открытый доступ.
	PairKey string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),               // безопасно ловим паники
		middleware.RequestID(),             // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),    // кладём request-scoped логгер в контекст и логируем
		middleware.AccessKey(opts.PairKey), // гейт доступа: query ?key= или пароль Basic
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc, opts.PairKey != "")

	// Регистрация маршрутов.
	root.Get("/", h.Index)
	root.Get("/pair", h.Pair)

	return root
}
