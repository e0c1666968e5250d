// wameow предоставляет реализацию provider.Provider на базе whatsmeow —
// внешней библиотеки multi-device протокола WhatsApp.
// wameow.go — конструктор провайдера, согласование версии и открытие хэндла;
// client.go — обёртка хэндла: запрос кода, диспетчеризация событий.
//
// Ключевой материал библиотека хранит сама в sqlite-файле внутри каталога
// сессии; для ядра это непрозрачный blob (см. internal/storage).
package wameow

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	wa "go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/pribylovaa/wa-pairing-service/internal/config"
	"github.com/pribylovaa/wa-pairing-service/internal/provider"
)

// Provider — адаптер whatsmeow.
type Provider struct {
	cfg        config.PairingConfig
	httpClient *http.Client
}

// New создает провайдера. Внутренние логи whatsmeow глушатся (waLog.Noop):
// сервис логирует события соединения сам, на своём уровне.
func New(cfg config.PairingConfig) *Provider {
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Проверка выполнения контракта верхнего уровня.
var _ provider.Provider = (*Provider)(nil)

// NegotiateVersion запрашивает у провайдера актуальную версию web-клиента
// и фиксирует её для последующих рукопожатий.
func (p *Provider) NegotiateVersion(ctx context.Context) (string, error) {
	const op = "provider/wameow/NegotiateVersion"

	ver, err := wa.GetLatestVersion(ctx, p.httpClient)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, provider.ErrUnavailable, err)
	}

	store.SetWAVersion(*ver)

	return ver.String(), nil
}

// Open открывает соединение поверх учётного состояния из каталога dir.
// Каталог должен существовать (CredentialStore.Ensure вызывается раньше).
func (p *Provider) Open(ctx context.Context, dir string) (provider.Client, error) {
	const op = "provider/wameow/Open"

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(dir, "whatsmeow.db"))

	container, err := sqlstore.New(ctx, "sqlite3", dsn, waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, provider.ErrUnavailable, err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, provider.ErrUnavailable, err)
	}

	cli := wa.NewClient(device, waLog.Noop)

	c := newClient(cli, p.cfg.ClientName)
	cli.AddEventHandler(c.handleEvent)

	if err := cli.Connect(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, provider.ErrUnavailable, err)
	}

	return c, nil
}
