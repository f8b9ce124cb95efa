package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STOREFRONT_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Addr                   string `koanf:"addr" validate:"required,hostname_port"`
	ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds" validate:"gte=0"`
}

type CatalogConfig struct {
	// ExportPath points at the flat product export the catalog is built
	// from. The file is read once per process.
	ExportPath string `koanf:"export_path" validate:"required"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`

	// File enables rotated file logging when set; empty logs to stdout.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
}

type RateLimitConfig struct {
	Enabled       bool `koanf:"enabled"`
	Limit         int  `koanf:"limit" validate:"gte=0"`
	WindowSeconds int  `koanf:"window_seconds" validate:"gte=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.addr":                     ":8080",
		"server.shutdown_timeout_seconds": 10,
		"catalog.export_path":             "public/products.csv",
		"log.level":                       "info",
		"log.max_size_mb":                 100,
		"log.max_backups":                 3,
		"log.max_age_days":                28,
		"rate_limit.limit":                120,
		"rate_limit.window_seconds":       60,
	}
}

// Load builds the configuration from three layers: built-in defaults, an
// optional JSON file, and STOREFRONT_-prefixed environment variables
// (double underscore separates nesting, e.g. STOREFRONT_SERVER__ADDR).
// Later layers win.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Cross-field rules the tag validators cannot express.
	if c.Metrics.Enabled && c.Metrics.Token == "" {
		return fmt.Errorf("invalid config: metrics.token is required when metrics.enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit == 0 || c.RateLimit.WindowSeconds == 0) {
		return fmt.Errorf("invalid config: rate_limit.limit and rate_limit.window_seconds must be positive when rate_limit.enabled")
	}

	return nil
}
