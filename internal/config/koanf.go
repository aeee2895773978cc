package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "moodify.db",
		},
		Catalog: CatalogConfig{
			BaseURL: "https://saavn.dev/api",
			Timeout: 15 * time.Second,
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Oracle: OracleConfig{
			Provider: ProviderAuto,
			Timeout:  30 * time.Second,
			// empty host and model fall back to the adapter defaults
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				BaseURL: "https://generativelanguage.googleapis.com",
			},
		},
		Chat: ChatConfig{
			Duration:            60 * time.Second,
			RecommendationCount: 6,
			DefaultUser:         "default_user",
		},
		Worker: WorkerConfig{
			Workers:     2,
			QueueSize:   100,
			SaveTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. Precedence: environment, then config
// file, then defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.resolve()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
	"catalog.oauth.scopes",
}

// processSliceFields splits comma-separated env values for slice settings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"moodify_addr":   "server.addr",
	"port":           "server.port",
	"cors_origins":   "server.cors_origins",
	"storage_driver": "storage.driver",
	"db_path":        "storage.path",

	"saavn_base_url":              "catalog.base_url",
	"catalog_timeout":             "catalog.timeout",
	"catalog_oauth_token_url":     "catalog.oauth.token_url",
	"catalog_oauth_client_id":     "catalog.oauth.client_id",
	"catalog_oauth_client_secret": "catalog.oauth.client_secret",
	"catalog_oauth_scopes":        "catalog.oauth.scopes",

	"oracle_provider": "oracle.provider",
	"oracle_timeout":  "oracle.timeout",
	"ollama_host":     "oracle.ollama.host",
	"ollama_model":    "oracle.ollama.model",
	"gemini_api_key":  "oracle.gemini.api_key",
	"gemini_model":    "oracle.gemini.model",
	"gemini_base_url": "oracle.gemini.base_url",

	"chat_duration":        "chat.duration",
	"recommendation_count": "chat.recommendation_count",
	"default_user_id":      "chat.default_user",

	"worker_count":      "worker.workers",
	"worker_queue_size": "worker.queue_size",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps known environment variables to config paths and
// drops everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
