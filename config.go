package sessionauth

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/sessionauth/password"
)

// Config is the complete engine configuration.
type Config struct {
	JWT      JWTConfig
	Policy   PolicyConfig
	Password password.Options
	Session  SessionConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// JWTConfig holds the signing secrets. RefreshSecret may equal BearerSecret or be empty,
// in which case BearerSecret signs both kinds.
type JWTConfig struct {
	BearerSecret  []byte
	RefreshSecret []byte
	Issuer        string
}

// SessionConfig configures the Redis-backed session store used by Builder.WithRedis.
type SessionConfig struct {
	RedisPrefix string
}

// DefaultConfig returns a configuration with every field but the secrets filled in.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{Issuer: "sessionauth"},
		Policy: PolicyConfig{
			BearerSeconds:     defaultBearerSeconds,
			RefreshSeconds:    defaultRefreshSeconds,
			LongExpirySeconds: defaultLongExpirySeconds,
		},
		Password: password.Options{
			Algorithm:  password.AlgorithmArgon2id,
			Argon2:     password.DefaultArgon2Config(),
			BcryptCost: 10,
		},
		Session: SessionConfig{RedisPrefix: "ars"},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	const op = "sessionauth.Config.Validate"

	if len(c.JWT.BearerSecret) == 0 {
		return fmt.Errorf("%s: %w", op, errors.New("JWT bearer secret must be set"))
	}
	if c.Policy.BearerSeconds < 0 || c.Policy.RefreshSeconds < 0 || c.Policy.LongExpirySeconds < 0 {
		return fmt.Errorf("%s: %w", op, errors.New("policy lifetimes must not be negative"))
	}
	if c.Policy.BearerSeconds > MaxLifetimeSeconds || c.Policy.RefreshSeconds > MaxLifetimeSeconds ||
		c.Policy.LongExpirySeconds > MaxLifetimeSeconds {
		return fmt.Errorf("%s: %w", op, errors.New("policy lifetimes exceed ten years"))
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%s: %w", op, errors.New("audit buffer size must be positive"))
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.BearerSecret = cloneBytes(cfg.JWT.BearerSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
