package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/wa-pairing-service/internal/models"
	"github.com/pribylovaa/wa-pairing-service/internal/provider"
	"github.com/pribylovaa/wa-pairing-service/pkg/log"
)

// session — внутреннее состояние одной активной попытки сопряжения.
// Teardown принадлежит сессии и срабатывает ровно один раз: либо по таймеру,
// либо при остановке сервиса (sync.Once).
type session struct {
	id    uuid.UUID
	phone string
	dir   string
	lg    *slog.Logger

	once sync.Once

	mu     sync.Mutex
	handle provider.Client
	timer  *time.Timer
	state  models.PairingState
	linked bool
	closed bool
}

func (ss *session) setState(st models.PairingState) {
	ss.mu.Lock()
	ss.state = st
	ss.mu.Unlock()
}

func (ss *session) markLinked() {
	ss.mu.Lock()
	ss.linked = true
	ss.state = models.PairingLinked
	ss.mu.Unlock()
}

// StartPairing выполняет одну попытку сопряжения от начала до конца:
// подготовка каталога, согласование версии, открытие хэндла, подписка
// на уведомления, запрос кода и планирование отложенного teardown.
//
// Код возвращается сразу после ответа провайдера; доставка обновлений
// учётных данных и teardown продолжаются асинхронно после ответа HTTP.
func (s *Service) StartPairing(ctx context.Context, rawNumber string) (*models.PairingSession, error) {
	const op = "service/pairing/StartPairing"

	// Валидация до любых внешних вызовов и побочных эффектов.
	phone := strings.TrimSpace(rawNumber)
	if !phoneRe.MatchString(phone) {
		pairingAttempts.WithLabelValues("invalid_number").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPhoneNumber)
	}

	dir := s.cfg.SessionDir

	ss := &session{
		id:    uuid.New(),
		phone: phone,
		dir:   dir,
		state: models.PairingCreated,
	}
	ss.lg = log.From(ctx).With(
		slog.String("session_id", ss.id.String()),
		slog.String("phone", phone),
	)

	// Каталог сессии эксклюзивен: параллельную попытку отклоняем сразу,
	// не ставим в очередь.
	if !s.acquire(dir, ss) {
		pairingAttempts.WithLabelValues("in_progress").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrPairingInProgress)
	}

	createdAt := time.Now().UTC()

	if err := s.storage.Ensure(ctx, dir); err != nil {
		s.fail(ss, "storage_error")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
	}

	version, err := s.provider.NegotiateVersion(ctx)
	if err != nil {
		s.fail(ss, "provider_unavailable")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProviderUnavailable, err)
	}

	ss.lg.Info("provider_version_negotiated", slog.String("version", version))

	handle, err := s.provider.Open(ctx, dir)
	if err != nil {
		s.fail(ss, "provider_unavailable")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrProviderUnavailable, err)
	}

	ss.mu.Lock()
	if ss.closed {
		// Teardown (остановка сервиса) успел сработать, пока открывался
		// хэндл: закрывать сессию уже некому, кроме нас.
		ss.mu.Unlock()
		handle.Close()
		s.fail(ss, "provider_unavailable")
		return nil, fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
	}
	ss.handle = handle
	ss.mu.Unlock()

	// Подписки — до запроса кода, чтобы не потерять ранние уведомления.
	handle.OnCredentialUpdate(s.credentialListener(ss))
	handle.OnConnectionUpdate(s.connectionListener(ss))

	ss.setState(models.PairingCodeRequested)

	code, err := handle.RequestPairingCode(ctx, phone)
	if err != nil {
		// Хэндл уже открыт — рвём соединение немедленно, таймер не заводим.
		handle.Close()
		s.fail(ss, "pairing_rejected")
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPairingRejected, err)
	}

	ss.setState(models.PairingCodeIssued)
	pairingAttempts.WithLabelValues("issued").Inc()
	ss.lg.Info("pairing_code_issued")

	// Отложенный teardown: по истечении окна сессия принудительно
	// закрывается независимо от статуса привязки. Если сессию уже
	// закрыли, таймер не заводим.
	ss.mu.Lock()
	if !ss.closed {
		ss.timer = time.AfterFunc(s.cfg.SessionTTL, func() {
			s.teardown(ss, "timer")
		})
	}
	ss.mu.Unlock()

	return &models.PairingSession{
		ID:        ss.id,
		Phone:     phone,
		Code:      code,
		State:     models.PairingCodeIssued,
		CreatedAt: createdAt,
	}, nil
}

// Shutdown принудительно закрывает все активные сессии (graceful stop).
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.active))
	for _, ss := range s.active {
		sessions = append(sessions, ss)
	}
	s.mu.Unlock()

	if len(sessions) > 0 {
		log.From(ctx).Info("closing_active_sessions", slog.Int("count", len(sessions)))
	}

	for _, ss := range sessions {
		s.teardown(ss, "shutdown")
	}
}

// acquire регистрирует попытку для каталога; false — каталог уже занят.
func (s *Service) acquire(dir string, ss *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[dir]; busy {
		return false
	}

	s.active[dir] = ss
	return true
}

func (s *Service) release(dir string) {
	s.mu.Lock()
	delete(s.active, dir)
	s.mu.Unlock()
}

// fail завершает попытку до выдачи кода: каталог освобождается сразу,
// teardown-таймер не заводится.
func (s *Service) fail(ss *session, outcome string) {
	ss.setState(models.PairingErrored)
	pairingAttempts.WithLabelValues(outcome).Inc()
	s.release(ss.dir)
}

// teardown закрывает сессию ровно один раз. Ошибка logout не влияет на
// корректность — это рекомендательная уборка, log-and-ignore.
//
// Хэндла может ещё не быть: сессия регистрируется до обращения к
// провайдеру, и Shutdown способен застать её посреди NegotiateVersion/Open.
// Тогда закрывать нечего; StartPairing увидит closed и приберёт хэндл сам.
func (s *Service) teardown(ss *session, trigger string) {
	ss.once.Do(func() {
		sessionTeardowns.WithLabelValues(trigger).Inc()

		ss.mu.Lock()
		if ss.timer != nil {
			ss.timer.Stop()
		}
		handle := ss.handle
		linked := ss.linked
		ss.closed = true
		ss.state = models.PairingExpired
		ss.mu.Unlock()

		if handle != nil {
			logoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := handle.Logout(logoutCtx); err != nil {
				ss.lg.Warn("session_logout_failed", slog.String("err", err.Error()))
			}
			handle.Close()
		}

		s.release(ss.dir)

		ss.lg.Info("session_closed",
			slog.String("trigger", trigger),
			slog.Bool("linked", linked),
		)
	})
}

// credentialListener персистит каждый снимок учётных данных в порядке
// прихода. Ошибка отдельной записи не фатальна: логируем и ждём следующего
// обновления — HTTP-ответ к этому моменту уже отдан.
func (s *Service) credentialListener(ss *session) provider.CredentialListener {
	return func(snap models.CredentialSnapshot) {
		if err := s.storage.ApplyUpdate(context.Background(), ss.dir, snap); err != nil {
			ss.lg.Warn("creds_persist_failed", slog.String("err", err.Error()))
			return
		}

		ss.lg.Info("creds_persisted", slog.Bool("linked", snap.Linked))
	}
}

// connectionListener — наблюдаемость: события соединения уходят в лог,
// Linked дополнительно помечает сессию привязанной.
func (s *Service) connectionListener(ss *session) provider.ConnectionListener {
	return func(ev models.ConnectionEvent) {
		ss.lg.Info("connection_update",
			slog.String("state", string(ev.State)),
			slog.String("detail", ev.Detail),
		)

		if ev.State == models.ConnectionLinked {
			ss.markLinked()
		}
	}
}
