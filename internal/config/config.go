package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port         int    `env:"PORT"          envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"devportal.db"`
	// APIEndpoint is the public base URL of the /api/v1 routes, used in
	// invitation links.
	APIEndpoint string   `env:"API_ENDPOINT"         envDefault:"http://localhost:8080/api/v1"`
	JWTSecret   string   `env:"JWT_SECRET"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel    string   `env:"LOG_LEVEL"            envDefault:"info"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that sets those headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// AdminEmail receives vendor and join approval requests.
	AdminEmail string `env:"ADMIN_EMAIL"`
	// SeedAdminEmail is registered as an administrator on startup when set.
	SeedAdminEmail string `env:"SEED_ADMIN_EMAIL"`

	SMTP            SMTPConfig      `envPrefix:"SMTP_"`
	AcceptRateLimit RateLimitConfig `envPrefix:"ACCEPT_RATE_LIMIT_"`
}

// SMTPConfig holds outgoing mail settings. An empty Host disables delivery.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"     envDefault:"no-reply@localhost"`
}

// RateLimitConfig is a per-client token bucket.
type RateLimitConfig struct {
	RPS   float64 `env:"RPS"   envDefault:"1"`
	Burst int     `env:"BURST" envDefault:"5"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.AcceptRateLimit.RPS <= 0 {
		return errors.New("ACCEPT_RATE_LIMIT_RPS must be positive")
	}
	if c.AcceptRateLimit.Burst < 1 {
		return errors.New("ACCEPT_RATE_LIMIT_BURST must be at least 1")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns LOG_LEVEL as a slog level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
