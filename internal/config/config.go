// Package config loads Moodify settings from defaults, an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Oracle providers.
const (
	ProviderAuto   = "auto"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Catalog CatalogConfig `koanf:"catalog"`
	Oracle  OracleConfig  `koanf:"oracle"`
	Chat    ChatConfig    `koanf:"chat"`
	Worker  WorkerConfig  `koanf:"worker"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
	// Port, when set, overrides the port of Addr. Hosting platforms inject it.
	Port              string        `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

type CatalogConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	OAuth   OAuthConfig   `koanf:"oauth"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// OAuthConfig enables client-credentials auth against a catalog mirror.
// Empty values leave requests unauthenticated.
type OAuthConfig struct {
	TokenURL     string   `koanf:"token_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	Scopes       []string `koanf:"scopes"`
}

type BreakerConfig struct {
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

type OracleConfig struct {
	Provider string        `koanf:"provider"`
	Timeout  time.Duration `koanf:"timeout"`
	Ollama   OllamaConfig  `koanf:"ollama"`
	Gemini   GeminiConfig  `koanf:"gemini"`
}

type OllamaConfig struct {
	Host  string `koanf:"host"`
	Model string `koanf:"model"`
}

type GeminiConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type ChatConfig struct {
	Duration            time.Duration `koanf:"duration"`
	RecommendationCount int           `koanf:"recommendation_count"`
	DefaultUser         string        `koanf:"default_user"`
}

type WorkerConfig struct {
	Workers     int           `koanf:"workers"`
	QueueSize   int           `koanf:"queue_size"`
	SaveTimeout time.Duration `koanf:"save_timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// resolve fills derived values: the listen address from Port and the
// oracle provider when set to auto.
func (c *Config) resolve() {
	if p := strings.TrimSpace(c.Server.Port); p != "" {
		host := c.Server.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		c.Server.Addr = host + ":" + strings.TrimPrefix(p, ":")
	}

	c.Oracle.Provider = strings.ToLower(strings.TrimSpace(c.Oracle.Provider))
	if c.Oracle.Provider == "" || c.Oracle.Provider == ProviderAuto {
		switch {
		case c.Oracle.Gemini.APIKey != "":
			c.Oracle.Provider = ProviderGemini
		case c.Oracle.Ollama.Host != "":
			c.Oracle.Provider = ProviderOllama
		default:
			c.Oracle.Provider = ProviderNone
		}
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		errs = append(errs, errors.New("server.read_header_timeout must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	switch c.Storage.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, errors.New("storage.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Catalog.Timeout <= 0 {
		errs = append(errs, errors.New("catalog.timeout must be positive"))
	}
	if c.Catalog.OAuth.TokenURL != "" && c.Catalog.OAuth.ClientID == "" {
		errs = append(errs, errors.New("catalog.oauth.client_id is required when token_url is set"))
	}

	switch c.Oracle.Provider {
	case ProviderGemini:
		if c.Oracle.Gemini.APIKey == "" {
			errs = append(errs, errors.New("oracle.gemini.api_key is required for the gemini provider"))
		}
	case ProviderOllama, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider))
	}
	if c.Oracle.Timeout <= 0 {
		errs = append(errs, errors.New("oracle.timeout must be positive"))
	}

	if c.Chat.Duration <= 0 {
		errs = append(errs, errors.New("chat.duration must be positive"))
	}
	if c.Chat.RecommendationCount <= 0 {
		errs = append(errs, errors.New("chat.recommendation_count must be positive"))
	}
	if strings.TrimSpace(c.Chat.DefaultUser) == "" {
		errs = append(errs, errors.New("chat.default_user is required"))
	}

	if c.Worker.Workers <= 0 {
		errs = append(errs, errors.New("worker.workers must be positive"))
	}
	if c.Worker.QueueSize <= 0 {
		errs = append(errs, errors.New("worker.queue_size must be positive"))
	}

	return errors.Join(errs...)
}
