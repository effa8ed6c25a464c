package sessionauth

import (
	"errors"
	"time"

	"github.com/MrEthical07/sessionauth/jwt"
	"github.com/MrEthical07/sessionauth/password"
	"github.com/MrEthical07/sessionauth/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config Config
	store  session.Store
	redis  redis.UniversalClient
	users  UserRepository
	hasher password.Hasher
	sink   AuditSink
	now    func() time.Time
	newID  func() string

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSessionStore sets the refresh-token store. It takes precedence over WithRedis.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis uses a session.RedisStore over client with Config.Session.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithUserRepository(users UserRepository) *Builder {
	b.users = users
	return b
}

// WithPasswordHasher overrides the hasher derived from Config.Password.
func (b *Builder) WithPasswordHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithClock injects the clock used for token issuance, verification and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithIDGenerator injects the token id source. Defaults to random UUIDs.
func (b *Builder) WithIDGenerator(newID func() string) *Builder {
	b.newID = newID
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user repository required")
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("session store or redis client required")
		}
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}

	hasher := b.hasher
	if hasher == nil {
		h, err := password.New(cfg.Password)
		if err != nil {
			return nil, err
		}
		hasher = h
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	codec, err := jwt.NewCodec(jwt.Config{
		BearerSecret:  cloneBytes(cfg.JWT.BearerSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		Issuer:        cfg.JWT.Issuer,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics(cfg.Metrics)

	sessions, err := NewSessionService(ServiceConfig{
		Issuer:  codec,
		Store:   store,
		Users:   b.users,
		Hasher:  hasher,
		Policy:  NewCredentialPolicy(cfg.Policy),
		Metrics: metrics,
		NewID:   b.newID,
		Now:     now,
	})
	if err != nil {
		return nil, err
	}
	sessions.audit = newAuditDispatcher(cfg.Audit, b.sink, now)

	b.built = true

	return &Engine{
		config:   cfg,
		codec:    codec,
		store:    store,
		users:    b.users,
		strict:   NewAuthGate(codec, GateOptions{StrictMalformed: true, Metrics: metrics}),
		lenient:  NewAuthGate(codec, GateOptions{StrictMalformed: false, Metrics: metrics}),
		refresh:  NewRefreshGate(codec, store, metrics),
		sessions: sessions,
		metrics:  metrics,
		audit:    sessions.audit,
	}, nil
}
