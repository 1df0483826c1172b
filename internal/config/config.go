package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EmailProviderResend = "resend"
	EmailProviderRelay  = "relay"
	EmailProviderLog    = "log"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Token     TokenConfig
	Cache     CacheConfig
	MFA       MFAConfig
	Email     EmailConfig
	External  ExternalConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	Environment  string        `env:"ENVIRONMENT" envDefault:"development"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	CORSOrigins  string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"identity"`
	Password string `env:"DB_PASSWORD" envDefault:"identity"`
	DBName   string `env:"DB_NAME" envDefault:"identitydb"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// TokenConfig bounds token lifetimes. RootDomainID names the system domain that only grants
// SYSTEM scope.
type TokenConfig struct {
	Issuer               string        `env:"TOKEN_ISSUER" envDefault:"identity-service"`
	RootDomainID         string        `env:"TOKEN_ROOT_DOMAIN_ID,required,notEmpty"`
	DefaultAccessTimeout time.Duration `env:"TOKEN_ACCESS_TIMEOUT" envDefault:"30m"`
	MaxAccessTimeout     time.Duration `env:"TOKEN_MAX_ACCESS_TIMEOUT" envDefault:"24h"`
	RefreshTimeout       time.Duration `env:"TOKEN_REFRESH_TIMEOUT" envDefault:"24h"`
}

// CacheConfig sets the Redis state/permission TTL and how long parsed signing keys are reused.
type CacheConfig struct {
	TTL    time.Duration `env:"CACHE_TTL" envDefault:"600s"`
	KeyTTL time.Duration `env:"KEY_CACHE_TTL" envDefault:"10m"`
}

type MFAConfig struct {
	CodeTTL     time.Duration `env:"MFA_CODE_TTL" envDefault:"300s"`
	SendTimeout time.Duration `env:"MFA_SEND_TIMEOUT" envDefault:"10s"`
}

type EmailConfig struct {
	Provider  string        `env:"EMAIL_PROVIDER" envDefault:"log"`
	APIKey    string        `env:"RESEND_API_KEY"`
	FromEmail string        `env:"EMAIL_FROM" envDefault:"no-reply@localhost"`
	FromName  string        `env:"EMAIL_FROM_NAME" envDefault:"Identity"`
	RelayURL  string        `env:"EMAIL_RELAY_URL"`
	Timeout   time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
}

// ExternalConfig points the EXTERNAL auth type at an identity provider. An empty endpoint
// leaves EXTERNAL unsupported.
type ExternalConfig struct {
	Endpoint string        `env:"EXTERNAL_AUTH_ENDPOINT"`
	Timeout  time.Duration `env:"EXTERNAL_AUTH_TIMEOUT" envDefault:"5s"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Load reads envFile (or ./.env when empty and present) and parses the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		// Intentar cargar .env (opcional en producción)
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Token.DefaultAccessTimeout <= 0 {
		errs = append(errs, errors.New("TOKEN_ACCESS_TIMEOUT must be positive"))
	}
	if c.Token.MaxAccessTimeout < c.Token.DefaultAccessTimeout {
		errs = append(errs, errors.New("TOKEN_MAX_ACCESS_TIMEOUT must not be below TOKEN_ACCESS_TIMEOUT"))
	}
	if c.Token.RefreshTimeout <= 0 {
		errs = append(errs, errors.New("TOKEN_REFRESH_TIMEOUT must be positive"))
	}

	switch c.Email.Provider {
	case EmailProviderLog:
	case EmailProviderResend:
		if c.Email.APIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for the resend provider"))
		}
	case EmailProviderRelay:
		if c.Email.RelayURL == "" {
			errs = append(errs, errors.New("EMAIL_RELAY_URL is required for the relay provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider))
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
