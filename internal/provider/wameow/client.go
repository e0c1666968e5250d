package wameow

import (
	"context"
	"fmt"
	"sync"
	"time"

	wa "go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/pribylovaa/wa-pairing-service/internal/models"
	"github.com/pribylovaa/wa-pairing-service/internal/provider"
)

// Client — хэндл одного соединения whatsmeow.
// Слушатели регистрируются один раз до запроса кода; события до регистрации
// молча отбрасываются (до RequestPairingCode значимых событий нет).
type Client struct {
	cli        *wa.Client
	clientName string

	mu      sync.Mutex
	onCreds provider.CredentialListener
	onConn  provider.ConnectionListener
}

func newClient(cli *wa.Client, clientName string) *Client {
	return &Client{cli: cli, clientName: clientName}
}

var _ provider.Client = (*Client)(nil)

// RequestPairingCode запрашивает у провайдера код сопряжения для номера.
func (c *Client) RequestPairingCode(ctx context.Context, phone string) (string, error) {
	const op = "provider/wameow/RequestPairingCode"

	code, err := c.cli.PairPhone(ctx, phone, true, wa.PairClientSafari, c.clientName)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, provider.ErrPairingRejected, err)
	}

	return code, nil
}

func (c *Client) OnCredentialUpdate(fn provider.CredentialListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCreds = fn
}

func (c *Client) OnConnectionUpdate(fn provider.ConnectionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConn = fn
}

// Logout завершает сессию на стороне провайдера.
func (c *Client) Logout(ctx context.Context) error {
	const op = "provider/wameow/Logout"

	if err := c.cli.Logout(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close рвёт соединение без сетевых вызовов.
func (c *Client) Close() {
	c.cli.Disconnect()
}

// handleEvent транслирует события whatsmeow в модель ядра.
// whatsmeow диспетчеризует события из одного цикла чтения сокета,
// поэтому порядок доставки совпадает с порядком эмиссии.
func (c *Client) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.PairSuccess:
		c.emitConn(models.ConnectionEvent{State: models.ConnectionLinked, Detail: e.ID.String()})
		c.emitCreds(c.snapshot(true))
	case *events.PairError:
		c.emitConn(models.ConnectionEvent{State: models.ConnectionPairError, Detail: e.Error.Error()})
	case *events.Connected:
		c.emitConn(models.ConnectionEvent{State: models.ConnectionConnected})
		c.emitCreds(c.snapshot(true))
	case *events.Disconnected:
		c.emitConn(models.ConnectionEvent{State: models.ConnectionDisconnected})
	case *events.LoggedOut:
		c.emitConn(models.ConnectionEvent{State: models.ConnectionLoggedOut, Detail: fmt.Sprintf("%v", e.Reason)})
	}
}

// snapshot собирает текущие регистрационные метаданные из стора устройства.
func (c *Client) snapshot(linked bool) models.CredentialSnapshot {
	st := c.cli.Store

	snap := models.CredentialSnapshot{
		RegistrationID: st.RegistrationID,
		Platform:       st.Platform,
		PushName:       st.PushName,
		BusinessName:   st.BusinessName,
		Linked:         linked,
		UpdatedAt:      time.Now().UTC(),
	}

	if st.ID != nil {
		snap.JID = st.ID.String()
	}

	return snap
}

func (c *Client) emitCreds(snap models.CredentialSnapshot) {
	c.mu.Lock()
	fn := c.onCreds
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (c *Client) emitConn(ev models.ConnectionEvent) {
	c.mu.Lock()
	fn := c.onConn
	c.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}
