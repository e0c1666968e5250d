package models

import (
	"time"

	"github.com/google/uuid"
)

// PairingState — состояние попытки сопряжения.
type PairingState string

const (
	// PairingCreated — сессия создана, внешних вызовов ещё не было.
	PairingCreated PairingState = "created"
	// PairingCodeRequested — код запрошен у провайдера, ответа ещё нет.
	PairingCodeRequested PairingState = "code_requested"
	// PairingCodeIssued — код выдан вызывающему, ждём привязку устройства.
	PairingCodeIssued PairingState = "code_issued"
	// PairingLinked — провайдер подтвердил привязку (наблюдаемое событие).
	PairingLinked PairingState = "linked"
	// PairingExpired — сработал отложенный teardown по таймеру.
	PairingExpired PairingState = "expired"
	// PairingErrored — ошибка до выдачи кода.
	PairingErrored PairingState = "errored"
)

// PairingSession — одна попытка сопряжения.
// Эфемерный объект: живёт от запроса /pair до teardown, не персистится
// и не переиспользуется между запросами.
type PairingSession struct {
	ID        uuid.UUID
	Phone     string
	Code      string
	State     PairingState
	CreatedAt time.Time
}
