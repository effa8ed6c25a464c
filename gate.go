package sessionauth

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/sessionauth/jwt"
)

const bearerPrefix = "Bearer "

// TokenVerifier verifies a signed credential of the given kind and returns its subject.
// *jwt.Codec implements it.
type TokenVerifier interface {
	Verify(token string, kind jwt.Kind) (string, error)
}

// GateOptions configures an AuthGate.
type GateOptions struct {
	// StrictMalformed reports structurally broken tokens as "Authorization header is
	// malformed" instead of the generic "Invalid JWT token".
	StrictMalformed bool
	Metrics         *Metrics
}

// AuthGate verifies bearer credentials. It is stateless and safe for concurrent use.
type AuthGate struct {
	verifier TokenVerifier
	strict   bool
	metrics  *Metrics
}

// NewAuthGate returns a gate over verifier. Construct one strict and one lenient gate
// when routes need different malformed-token messages.
func NewAuthGate(verifier TokenVerifier, opts GateOptions) *AuthGate {
	return &AuthGate{verifier: verifier, strict: opts.StrictMalformed, metrics: opts.Metrics}
}

// Strict reports whether the gate uses the strict malformed message.
func (g *AuthGate) Strict() bool { return g.strict }

// Authenticate inspects an Authorization header value. It never fails: problems are
// expressed in the returned RequestAuthContext.
func (g *AuthGate) Authenticate(header string) RequestAuthContext {
	token, ok := BearerToken(header)
	if !ok {
		g.metrics.Inc(MetricAuthUnauthenticated)
		return unauthenticated()
	}

	var start time.Time
	if g.metrics.LatencyEnabled() {
		start = time.Now()
	}
	subject, err := g.verifier.Verify(token, jwt.KindBearer)
	if !start.IsZero() {
		g.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	if err != nil {
		g.metrics.Inc(MetricAuthRejected)
		return rejected(g.classify(err))
	}

	g.metrics.Inc(MetricAuthAuthenticated)
	return authenticated(Identity(subject), token)
}

func (g *AuthGate) classify(err error) *Rejection {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return &Rejection{Kind: KindTokenExpired, Message: MsgTokenExpired, Cause: err}
	case errors.Is(err, jwt.ErrMalformed):
		msg := MsgInvalidToken
		if g.strict {
			msg = MsgHeaderMalformed
		}
		return &Rejection{Kind: KindMalformed, Message: msg, Cause: err}
	case errors.Is(err, jwt.ErrInvalidSignature):
		return &Rejection{Kind: KindInvalidToken, Message: MsgInvalidToken, Cause: err}
	default:
		return Internal(err)
	}
}

// BearerToken extracts the credential from an Authorization header value. A missing
// "Bearer " prefix or an empty remainder yields false.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
