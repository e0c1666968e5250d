// service содержит бизнес-логику pairing-сервиса: валидацию номера,
// жизненный цикл сессии сопряжения и привязку обновлений учётных данных
// к хранилищу через интерфейсы из пакетов storage и provider.
//
// Основные аспекты:
//   - Экземпляр Service безопасен для конкурентного использования из разных
//     горутин; одновременные попытки для одного каталога сессии явно
//     отклоняются (ErrPairingInProgress), а не ставятся в очередь.
//   - Ошибки возвращаются и далее маппятся HTTP-слоем на статусы
//     (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"regexp"
	"sync"

	"github.com/pribylovaa/wa-pairing-service/internal/config"
	"github.com/pribylovaa/wa-pairing-service/internal/provider"
	"github.com/pribylovaa/wa-pairing-service/internal/storage"
)

var (
	// ErrInvalidPhoneNumber — номер не подходит под ^\d{6,15}$ (код страны,
	// без '+'). Отклоняется до любых внешних вызовов. Транспорт: HTTP 400.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// ErrPairingInProgress — для каталога сессии уже идёт попытка
	// сопряжения. Транспорт: HTTP 409.
	ErrPairingInProgress = errors.New("pairing already in progress")

	// ErrStorage — не удалось подготовить каталог сессии. Фатальна для
	// текущей попытки, повтор возможен. Транспорт: HTTP 500.
	ErrStorage = errors.New("storage failure")

	// ErrProviderUnavailable — согласование версии или открытие хэндла
	// не удалось. Транзиентная, повтор возможен. Транспорт: HTTP 500.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrPairingRejected — провайдер отказался выдать код для номера.
	// Повтор возможен после исправления номера. Транспорт: HTTP 500.
	ErrPairingRejected = errors.New("pairing rejected")
)

// phoneRe — PhoneIdentifier: 6–15 ASCII-цифр с кодом страны, без '+'.
var phoneRe = regexp.MustCompile(`^\d{6,15}$`)

// Service описывает бизнес-логику pairing-сервиса.
type Service struct {
	cfg      config.PairingConfig
	storage  storage.CredentialStore
	provider provider.Provider

	mu     sync.Mutex
	active map[string]*session // каталог сессии -> активная попытка
}

// New создаёт новый экземпляр Service.
func New(st storage.CredentialStore, pr provider.Provider, cfg config.PairingConfig) *Service {
	return &Service{
		cfg:      cfg,
		storage:  st,
		provider: pr,
		active:   make(map[string]*session),
	}
}
