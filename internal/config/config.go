package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const devCookieSecret = "dev-secret-change-in-production"

// Session backends.
const (
	BackendCookie = "cookie"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
)

var (
	ErrInsecureSecret = errors.New("COOKIE_SECRET must be set in production environment")
	ErrUnknownBackend = errors.New("unknown SESSION_BACKEND")
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	AuthAPIURL     string        `env:"AUTH_API_URL" envDefault:"http://localhost:5000"`
	AuthAPITimeout time.Duration `env:"AUTH_API_TIMEOUT" envDefault:"10s"`
	ChatsURL       string        `env:"CHATS_URL" envDefault:"/chats"`

	CookieSecret   string        `env:"COOKIE_SECRET" envDefault:"dev-secret-change-in-production"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"cookie"`
	DatabaseDSN    string        `env:"DATABASE_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/chatweb?parseTime=true"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"chatweb.db"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.IsProduction() && cfg.CookieSecret == devCookieSecret {
		return Config{}, ErrInsecureSecret
	}

	switch cfg.SessionBackend {
	case BackendCookie, BackendMemory, BackendRedis, BackendMySQL, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.SessionBackend)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
