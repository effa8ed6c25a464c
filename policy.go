package sessionauth

const (
	defaultBearerSeconds     int64 = 600
	defaultRefreshSeconds    int64 = 86400
	defaultLongExpirySeconds int64 = 31536000
)

// PolicyConfig holds the lifetime defaults. Zero fields fall back to 600s, 86400s and 365 days.
type PolicyConfig struct {
	BearerSeconds     int64
	RefreshSeconds    int64
	LongExpirySeconds int64
}

// CredentialPolicy resolves credential lifetimes from defaults and caller overrides.
type CredentialPolicy struct {
	defaults   Lifetimes
	longExpiry int64
}

// NewCredentialPolicy fills zero fields of cfg with the built-in defaults.
func NewCredentialPolicy(cfg PolicyConfig) CredentialPolicy {
	p := CredentialPolicy{
		defaults:   Lifetimes{BearerSeconds: defaultBearerSeconds, RefreshSeconds: defaultRefreshSeconds},
		longExpiry: defaultLongExpirySeconds,
	}
	if cfg.BearerSeconds > 0 {
		p.defaults.BearerSeconds = cfg.BearerSeconds
	}
	if cfg.RefreshSeconds > 0 {
		p.defaults.RefreshSeconds = cfg.RefreshSeconds
	}
	if cfg.LongExpirySeconds > 0 {
		p.longExpiry = cfg.LongExpirySeconds
	}
	return p
}

// Defaults returns the lifetimes used when no override applies. Refresh always uses these.
func (p CredentialPolicy) Defaults() Lifetimes {
	return p.defaults
}

// Resolve applies, in order: defaults, LongExpiry, then each explicit override.
func (p CredentialPolicy) Resolve(o Overrides) Lifetimes {
	out := p.defaults
	if o.LongExpiry {
		out.BearerSeconds = p.longExpiry
		out.RefreshSeconds = p.longExpiry
	}
	if o.BearerSeconds != nil {
		out.BearerSeconds = *o.BearerSeconds
	}
	if o.RefreshSeconds != nil {
		out.RefreshSeconds = *o.RefreshSeconds
	}
	return out
}
