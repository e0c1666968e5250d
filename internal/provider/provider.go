// provider описывает контракт внешнего identity-провайдера для сопряжения.
// Криптографический протокол привязки устройства целиком принадлежит
// внешней библиотеке; ядру нужны ровно четыре вещи: согласование версии,
// открытие хэндла, запрос кода и подписка на уведомления.
package provider

import (
	"context"
	"errors"

	"github.com/pribylovaa/wa-pairing-service/internal/models"
)

var (
	// ErrUnavailable — провайдер недоступен: не удалось согласовать версию
	// или открыть соединение. Транспорт: HTTP 500, ошибка транзиентная.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrPairingRejected — провайдер отказался выдать код для этого номера
	// (номер некорректен либо уже привязан). Транспорт: HTTP 500,
	// повтор возможен после исправления номера.
	ErrPairingRejected = errors.New("pairing rejected")
)

// CredentialListener получает снимок учётных данных при каждом обновлении.
type CredentialListener func(models.CredentialSnapshot)

// ConnectionListener получает события смены состояния соединения.
type ConnectionListener func(models.ConnectionEvent)

// Client — открытый хэндл соединения с провайдером для одной сессии.
type Client interface {
	// RequestPairingCode запрашивает код сопряжения для номера телефона.
	// Блокирующий сетевой вызов.
	RequestPairingCode(ctx context.Context, phone string) (string, error)
	// OnCredentialUpdate регистрирует слушателя обновлений учётных данных.
	// Регистрировать нужно до RequestPairingCode, иначе ранние события
	// будут потеряны.
	OnCredentialUpdate(fn CredentialListener)
	// OnConnectionUpdate регистрирует слушателя событий соединения.
	OnConnectionUpdate(fn ConnectionListener)
	// Logout завершает сессию на стороне провайдера.
	Logout(ctx context.Context) error
	// Close рвёт соединение без сетевых вызовов.
	Close()
}

// Provider открывает хэндлы, привязанные к каталогу сессии.
type Provider interface {
	// NegotiateVersion согласует текущую версию протокола с провайдером.
	NegotiateVersion(ctx context.Context) (string, error)
	// Open открывает хэндл поверх учётного состояния из каталога dir.
	Open(ctx context.Context, dir string) (Client, error)
}
