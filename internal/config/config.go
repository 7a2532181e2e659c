package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix marks the environment variables that override the file.
const EnvPrefix = "MERCANDO__"

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Log         LogConfig         `koanf:"log"`
	Auth        AuthConfig        `koanf:"auth"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
	Metrics     MetricsConfig     `koanf:"metrics"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	SecureCookie    bool          `koanf:"secure_cookie"`
	TrustProxy      bool          `koanf:"trust_proxy"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type AuthConfig struct {
	Hasher     string        `koanf:"hasher"`
	BcryptCost int           `koanf:"bcrypt_cost"`
	SessionTTL time.Duration `koanf:"session_ttl"`
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`
}

type MaintenanceConfig struct {
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

var defaults = map[string]any{
	"server.host":                  "",
	"server.port":                  8080,
	"server.secure_cookie":         false,
	"server.trust_proxy":           false,
	"server.read_timeout":          "5s",
	"server.idle_timeout":          "120s",
	"server.shutdown_timeout":      "5s",
	"database.path":                "mercando.db",
	"log.level":                    "info",
	"log.format":                   "text",
	"auth.hasher":                  "bcrypt",
	"auth.bcrypt_cost":             bcrypt.DefaultCost,
	"auth.session_ttl":             "720h",
	"auth.rate_limit":              10,
	"auth.rate_window":             "1m",
	"maintenance.cleanup_interval": "1h",
	"metrics.enabled":              true,
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then MERCANDO__ environment variables.
// A double underscore separates levels: MERCANDO__AUTH__SESSION_TTL=24h
// overrides auth.session_ttl.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix)
		key = strings.ToLower(key)
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and supported values and normalizes string fields.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}
	c.Server.Host = strings.TrimSpace(c.Server.Host)

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.idle_timeout", c.Server.IdleTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"auth.session_ttl", c.Auth.SessionTTL},
		{"auth.rate_window", c.Auth.RateWindow},
		{"maintenance.cleanup_interval", c.Maintenance.CleanupInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("invalid %s %s: must be greater than 0", d.name, d.value)
		}
	}

	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json", "pretty":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q, %q", c.Log.Format, "text", "json", "pretty")
	}

	hasher := strings.ToLower(strings.TrimSpace(c.Auth.Hasher))
	switch hasher {
	case "bcrypt", "argon2id":
		c.Auth.Hasher = hasher
	default:
		return fmt.Errorf("invalid auth.hasher %q: must be one of %q, %q", c.Auth.Hasher, "bcrypt", "argon2id")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("invalid auth.bcrypt_cost %d: must be between %d and %d", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.RateLimit <= 0 {
		return fmt.Errorf("invalid auth.rate_limit %d: must be positive", c.Auth.RateLimit)
	}

	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
