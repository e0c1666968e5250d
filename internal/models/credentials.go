package models

import "time"

// CredentialSnapshot — снимок учётного состояния аккаунта после очередного
// обновления от протокольной библиотеки. Криптографический материал остаётся
// в файлах библиотеки внутри каталога сессии (для нас это непрозрачный blob);
// здесь — регистрационные метаданные, которые мы персистим сами.
type CredentialSnapshot struct {
	JID            string    `json:"jid,omitempty"`
	RegistrationID uint32    `json:"registration_id"`
	Platform       string    `json:"platform,omitempty"`
	PushName       string    `json:"push_name,omitempty"`
	BusinessName   string    `json:"business_name,omitempty"`
	Linked         bool      `json:"linked"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsZero сообщает, что снимок пустой (Load по каталогу без истории).
func (s CredentialSnapshot) IsZero() bool {
	return s.JID == "" && s.RegistrationID == 0 && !s.Linked
}

// ConnectionState — состояние соединения, наблюдаемое через хэндл провайдера.
type ConnectionState string

const (
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionLinked       ConnectionState = "linked"
	ConnectionLoggedOut    ConnectionState = "logged_out"
	ConnectionPairError    ConnectionState = "pair_error"
)

// ConnectionEvent — событие смены состояния соединения.
// Ядро на эти переходы бизнес-логику не вешает: события уходят в лог,
// Linked дополнительно помечает сессию привязанной.
type ConnectionEvent struct {
	State  ConnectionState
	Detail string
}
