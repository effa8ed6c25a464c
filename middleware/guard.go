package middleware

import (
	"net/http"

	"github.com/MrEthical07/sessionauth"
)

// Authenticate runs gate on the Authorization header and attaches the result to the
// request context. It never blocks.
func Authenticate(gate *sessionauth.AuthGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rac := gate.Authenticate(r.Header.Get("Authorization"))
			ctx := sessionauth.WithAuthContext(r.Context(), rac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthorization blocks requests that Authenticate did not mark as authenticated.
func RequireAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, rej := sessionauth.RequireAuthorization(r.Context()); rej != nil {
				WriteRejection(w, r, rej)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity blocks requests unless the authenticated identity equals target(r).
func RequireIdentity(target func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, rej := sessionauth.RequireIdentity(r.Context(), target(r)); rej != nil {
				WriteRejection(w, r, rej)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
