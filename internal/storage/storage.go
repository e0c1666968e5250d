package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/wa-pairing-service/internal/models"
)

var (
	// ErrEnsureFailed — не удалось создать каталог сессии.
	// Фатальна для текущей попытки сопряжения (транспорт: HTTP 500).
	ErrEnsureFailed = errors.New("session dir ensure failed")
	// ErrPersistFailed — не удалось надёжно записать снимок учётных данных.
	// Для отдельного обновления некритична: логируется, сессия продолжается.
	ErrPersistFailed = errors.New("credentials persist failed")
)

// CredentialStore — долговременное хранилище учётного состояния одного
// аккаунта, привязанное к каталогу сессии.
type CredentialStore interface {
	// Ensure создает каталог сессии, если его нет. Идемпотентна и безопасна
	// при конкурентных вызовах для одного каталога.
	Ensure(ctx context.Context, dir string) error
	// ApplyUpdate надёжно персистит полный текущий снимок до возврата:
	// падение процесса между двумя обновлениями не теряет последний
	// полностью применённый.
	ApplyUpdate(ctx context.Context, dir string, snap models.CredentialSnapshot) error
	// Load возвращает сохранённый снимок или пустой, если истории нет.
	Load(ctx context.Context, dir string) (models.CredentialSnapshot, error)
}
