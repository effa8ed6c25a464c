package sessionauth

import "context"

// AuthStatus is the outcome of a gate. The zero value is AuthUnauthenticated.
type AuthStatus uint8

const (
	AuthUnauthenticated AuthStatus = iota
	AuthAuthenticated
	AuthRejected
)

func (s AuthStatus) String() string {
	switch s {
	case AuthAuthenticated:
		return "authenticated"
	case AuthRejected:
		return "rejected"
	default:
		return "unauthenticated"
	}
}

// AuthResult is what a gate concluded about a request.
// Identity is set only when Status is AuthAuthenticated, Rejection only when AuthRejected.
type AuthResult struct {
	Status    AuthStatus
	Identity  Identity
	Rejection *Rejection
}

// RequestAuthContext is the immutable value AuthGate attaches to a request.
// It carries the AuthResult and, on success, the raw presented bearer token.
type RequestAuthContext struct {
	result AuthResult
	token  string
}

func unauthenticated() RequestAuthContext {
	return RequestAuthContext{}
}

func authenticated(id Identity, token string) RequestAuthContext {
	return RequestAuthContext{result: AuthResult{Status: AuthAuthenticated, Identity: id}, token: token}
}

func rejected(r *Rejection) RequestAuthContext {
	return RequestAuthContext{result: AuthResult{Status: AuthRejected, Rejection: r}}
}

func (c RequestAuthContext) Result() AuthResult { return c.result }

func (c RequestAuthContext) Status() AuthStatus { return c.result.Status }

// Identity returns the authenticated identity and whether the request is authenticated.
func (c RequestAuthContext) Identity() (Identity, bool) {
	return c.result.Identity, c.result.Status == AuthAuthenticated
}

// Token returns the raw bearer token that authenticated the request, or "".
func (c RequestAuthContext) Token() string { return c.token }

func (c RequestAuthContext) Rejection() *Rejection { return c.result.Rejection }

// RequireAuthorization turns anything but an authenticated result into a rejection.
// A missing credential becomes the 401 "not found" rejection; a rejected credential
// keeps its own classification.
func (c RequestAuthContext) RequireAuthorization() (Identity, *Rejection) {
	switch c.result.Status {
	case AuthAuthenticated:
		return c.result.Identity, nil
	case AuthRejected:
		if c.result.Rejection != nil {
			return "", c.result.Rejection
		}
	}
	return "", Reject(KindUnauthorized, MsgHeaderNotFound)
}

// RequireIdentity is RequireAuthorization followed by a 403 when the authenticated
// identity differs from target.
func (c RequestAuthContext) RequireIdentity(target string) (Identity, *Rejection) {
	id, rej := c.RequireAuthorization()
	if rej != nil {
		return "", rej
	}
	if id != NormalizeIdentity(target) {
		return "", Reject(KindForbidden, MsgForbidden)
	}
	return id, nil
}

type authContextKey struct{}

// WithAuthContext returns a copy of ctx carrying rac.
func WithAuthContext(ctx context.Context, rac RequestAuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, rac)
}

// AuthContextFrom returns the RequestAuthContext attached by a gate. When none is
// attached it returns an unauthenticated context and false.
func AuthContextFrom(ctx context.Context) (RequestAuthContext, bool) {
	if ctx == nil {
		return unauthenticated(), false
	}
	rac, ok := ctx.Value(authContextKey{}).(RequestAuthContext)
	return rac, ok
}

// RequireAuthorization applies RequestAuthContext.RequireAuthorization to the context of ctx.
func RequireAuthorization(ctx context.Context) (Identity, *Rejection) {
	rac, _ := AuthContextFrom(ctx)
	return rac.RequireAuthorization()
}

// RequireIdentity applies RequestAuthContext.RequireIdentity to the context of ctx.
func RequireIdentity(ctx context.Context, target string) (Identity, *Rejection) {
	rac, _ := AuthContextFrom(ctx)
	return rac.RequireIdentity(target)
}
