package sessionauth

import (
	"context"
	"fmt"

	"github.com/MrEthical07/sessionauth/jwt"
	"github.com/MrEthical07/sessionauth/session"
)

// RefreshRequest is the body accepted by the refresh and logout routes.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshGate validates a presented refresh token against its signature, its expiry
// and the session store.
type RefreshGate struct {
	verifier TokenVerifier
	store    session.Store
	metrics  *Metrics
}

func NewRefreshGate(verifier TokenVerifier, store session.Store, metrics *Metrics) *RefreshGate {
	return &RefreshGate{verifier: verifier, store: store, metrics: metrics}
}

// AuthenticateRefresh returns the identity owning req.RefreshToken and a handle bound to
// that token. Every codec failure and every store mismatch is reported as TokenExpired.
func (g *RefreshGate) AuthenticateRefresh(ctx context.Context, req RefreshRequest) (Identity, *SessionHandle, *Rejection) {
	const op = "sessionauth.AuthenticateRefresh"

	if req.RefreshToken == "" {
		return "", nil, Reject(KindBadRequest, MsgRefreshRequired)
	}

	subject, err := g.verifier.Verify(req.RefreshToken, jwt.KindRefresh)
	if err != nil {
		g.metrics.Inc(MetricRefreshRejected)
		return "", nil, &Rejection{Kind: KindTokenExpired, Message: MsgTokenExpired, Cause: err}
	}

	id := Identity(subject)
	ok, err := g.store.Matches(ctx, string(id), req.RefreshToken)
	if err != nil {
		return "", nil, Internal(fmt.Errorf("%s: %w", op, err))
	}
	if !ok {
		g.metrics.Inc(MetricRefreshRejected)
		return "", nil, Reject(KindTokenExpired, MsgTokenExpired)
	}

	return id, &SessionHandle{identity: id, presented: req.RefreshToken, store: g.store}, nil
}

// SessionHandle lets the holder of a validated refresh token replace or clear it.
type SessionHandle struct {
	identity  Identity
	presented string
	store     session.Store
}

func (h *SessionHandle) Identity() Identity { return h.identity }

// Rotate stores next only if the slot still holds the token this handle was issued for.
// A lost race returns session.ErrMismatch.
func (h *SessionHandle) Rotate(ctx context.Context, next string) error {
	return h.store.Rotate(ctx, string(h.identity), h.presented, next)
}

// Clear empties the identity's refresh slot.
func (h *SessionHandle) Clear(ctx context.Context) error {
	return h.store.Clear(ctx, string(h.identity))
}
