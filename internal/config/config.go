// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const minSecretKeyLength = 32

var insecureSecretPlaceholders = []string{
	"change_me_in_production",
	"replace_with_at_least_32_random_characters",
}

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	DBDriver        string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath          string        `envconfig:"DB_PATH" default:"data/ledgerly.db"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	SecretKey       string        `envconfig:"SECRET_KEY"`
	CookieSecure    bool          `envconfig:"COOKIE_SECURE" default:"false"`
	TimeZone        string        `envconfig:"TZ" default:"UTC"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	SessionCacheTTL time.Duration `envconfig:"SESSION_CACHE_TTL" default:"5m"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"120"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	JanitorInterval time.Duration `envconfig:"JANITOR_INTERVAL" default:"1h"`
}

// Load reads .env when present, then the process environment, and validates
// the result.
func Load(logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using process environment")
	} else {
		logger.Info("environment loaded from .env")
	}
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	secret, err := ValidateSecretKey(cfg.SecretKey)
	if err != nil {
		return err
	}
	cfg.SecretKey = secret

	port, err := ValidatePort(cfg.Port)
	if err != nil {
		return err
	}
	cfg.Port = port

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	if cfg.SessionCacheTTL < 0 {
		return errors.New("SESSION_CACHE_TTL must not be negative")
	}
	if cfg.RateLimitMax < 0 {
		return errors.New("RATE_LIMIT_MAX must not be negative")
	}
	if cfg.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.JanitorInterval <= 0 {
		return errors.New("JANITOR_INTERVAL must be positive")
	}
	return nil
}

// Location resolves TZ, falling back to UTC for unknown names.
func (cfg *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(cfg.TimeZone)
	if name == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid TZ %q: %w", name, err)
	}
	return location, nil
}

func ValidateSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	for _, placeholder := range insecureSecretPlaceholders {
		if strings.EqualFold(secret, placeholder) {
			return "", errors.New("SECRET_KEY uses an insecure placeholder value")
		}
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func ValidatePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	value, err := strconv.Atoi(port)
	if err != nil {
		return "", fmt.Errorf("PORT must be numeric, got %q", raw)
	}
	if value < 1 || value > 65535 {
		return "", fmt.Errorf("PORT must be between 1 and 65535, got %d", value)
	}
	return port, nil
}
