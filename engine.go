package sessionauth

import (
	"github.com/MrEthical07/sessionauth/jwt"
	"github.com/MrEthical07/sessionauth/session"
)

// Engine bundles the gates and the session service built from one Config.
// All methods are safe for concurrent use after Build.
type Engine struct {
	config   Config
	codec    *jwt.Codec
	store    session.Store
	users    UserRepository
	strict   *AuthGate
	lenient  *AuthGate
	refresh  *RefreshGate
	sessions *SessionService
	metrics  *Metrics
	audit    *auditDispatcher
}

// StrictGate reports malformed bearer tokens as "Authorization header is malformed".
func (e *Engine) StrictGate() *AuthGate { return e.strict }

// LenientGate reports malformed bearer tokens as "Invalid JWT token".
func (e *Engine) LenientGate() *AuthGate { return e.lenient }

func (e *Engine) RefreshGate() *RefreshGate { return e.refresh }

func (e *Engine) Sessions() *SessionService { return e.sessions }

func (e *Engine) Users() UserRepository { return e.users }

func (e *Engine) Codec() *jwt.Codec { return e.codec }

// Close flushes pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns how many audit events were dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return NewMetrics(MetricsConfig{}).Snapshot()
	}
	return e.metrics.Snapshot()
}
