// Package config loads the authd service configuration from YAML with an environment overlay.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/password"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Development fallbacks used when no secret is configured. Refused in prod.
const (
	DevBearerSecret  = "dev-bearer-secret-change-me"
	DevRefreshSecret = "dev-refresh-secret-change-me"
)

// Config is the root service configuration.
// Sources, highest priority first:
//  1. explicit path from --config;
//  2. the CONFIG_PATH environment variable;
//  3. ./local.yaml;
//  4. environment variables only.
//
// Environment variables are overlaid on top of whichever file was read.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Password PasswordConfig `yaml:"password"`
	Audit    AuditConfig    `yaml:"audit"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig holds token signing and lifetime settings. Lifetimes are in seconds.
type AuthConfig struct {
	BearerSecret      string `yaml:"bearer_secret" env:"JWT_BEARER_SECRET"`
	RefreshSecret     string `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET"`
	Issuer            string `yaml:"issuer" env:"JWT_ISSUER" env-default:"sessionauth"`
	BearerSeconds     int64  `yaml:"bearer_seconds" env:"BEARER_SECONDS" env-default:"600"`
	RefreshSeconds    int64  `yaml:"refresh_seconds" env:"REFRESH_SECONDS" env-default:"86400"`
	LongExpirySeconds int64  `yaml:"long_expiry_seconds" env:"LONG_EXPIRY_SECONDS" env-default:"31536000"`

	// MaxLoginAttempts enables failed-login throttling on the redis backend; 0 disables it.
	MaxLoginAttempts int           `yaml:"max_login_attempts" env:"MAX_LOGIN_ATTEMPTS" env-default:"0"`
	LoginCooldown    time.Duration `yaml:"login_cooldown" env:"LOGIN_COOLDOWN" env-default:"15m"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX" env-default:"ars"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

type PasswordConfig struct {
	Algorithm  string `yaml:"algorithm" env:"PASSWORD_ALGORITHM" env-default:"argon2id"`
	BcryptCost int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

type AuditConfig struct {
	Enabled    bool `yaml:"enabled" env:"AUDIT_ENABLED" env-default:"false"`
	BufferSize int  `yaml:"buffer_size" env:"AUDIT_BUFFER_SIZE" env-default:"1024"`
}

type TimeoutConfig struct {
	ReadHeader time.Duration `yaml:"read_header" env:"READ_HEADER_TIMEOUT" env-default:"5s"`
	Request    time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"10s"`
	Shutdown   time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration following the documented priority, applies secret
// fallbacks and validates the result.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	cfg, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
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

	if path != "" {
		return readFile(path)
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}
	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}

// applyFallbacks fills empty secrets with the development values.
func (c *Config) applyFallbacks() {
	if c.Auth.BearerSecret == "" {
		c.Auth.BearerSecret = DevBearerSecret
	}
	if c.Auth.RefreshSecret == "" {
		c.Auth.RefreshSecret = DevRefreshSecret
	}
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	if c.Env == EnvProd && (c.Auth.BearerSecret == DevBearerSecret || c.Auth.RefreshSecret == DevRefreshSecret) {
		return errors.New("JWT_BEARER_SECRET and JWT_REFRESH_SECRET must be set in prod")
	}
	if c.Auth.BearerSeconds < 0 || c.Auth.RefreshSeconds < 0 || c.Auth.LongExpirySeconds < 0 {
		return errors.New("token lifetimes must not be negative")
	}
	if c.Auth.MaxLoginAttempts < 0 {
		return errors.New("auth.max_login_attempts must not be negative")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Password.Algorithm {
	case password.AlgorithmArgon2id, password.AlgorithmBcrypt:
	default:
		return fmt.Errorf("unknown password algorithm %q", c.Password.Algorithm)
	}
	return nil
}

// Engine converts the service configuration to the library configuration.
func (c *Config) Engine() sessionauth.Config {
	out := sessionauth.DefaultConfig()
	out.JWT.BearerSecret = []byte(c.Auth.BearerSecret)
	out.JWT.RefreshSecret = []byte(c.Auth.RefreshSecret)
	out.JWT.Issuer = c.Auth.Issuer
	out.Policy = sessionauth.PolicyConfig{
		BearerSeconds:     c.Auth.BearerSeconds,
		RefreshSeconds:    c.Auth.RefreshSeconds,
		LongExpirySeconds: c.Auth.LongExpirySeconds,
	}
	out.Password.Algorithm = c.Password.Algorithm
	out.Password.BcryptCost = c.Password.BcryptCost
	out.Session.RedisPrefix = c.Storage.RedisPrefix
	out.Audit.Enabled = c.Audit.Enabled
	out.Audit.BufferSize = c.Audit.BufferSize
	return out
}
