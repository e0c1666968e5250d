// config - источник загрузки конфигурации pairing-service.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	Pairing  PairingConfig `yaml:"pairing"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — публичный HTTP-сервер (страница сопряжения).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PORT" env-default:"5000"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AuthConfig — гейт доступа к странице сопряжения.
// Пустой PairKey выключает проверку (открытый доступ) — небезопасный
// дефолт, о котором сервис предупреждает на старте.
type AuthConfig struct {
	PairKey string `yaml:"pair_key" env:"PAIR_KEY"`
}

// PairingConfig — параметры сессии сопряжения.
type PairingConfig struct {
	// SessionDir — каталог с учётными данными аккаунта. Создаётся лениво
	// при первой попытке сопряжения; сервисом никогда не удаляется.
	SessionDir string `yaml:"session_dir" env:"SESSION_DIR" env-default:"./sessions/default"`
	// SessionTTL — окно жизни сессии; по его истечении хэндл принудительно
	// закрывается независимо от статуса привязки.
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"5m"`
	// ClientName — стабильное представление клиента для провайдера.
	ClientName string `yaml:"client_name" env:"CLIENT_NAME" env-default:"Safari (macOS)"`
}

// TimeoutConfig — таймаут обработки запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"30s"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}
