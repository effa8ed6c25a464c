package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MrEthical07/sessionauth"
)

type sessionHandleKey struct{}

// SessionFrom returns the handle attached by RefreshGuard.
func SessionFrom(ctx context.Context) (*sessionauth.SessionHandle, bool) {
	h, ok := ctx.Value(sessionHandleKey{}).(*sessionauth.SessionHandle)
	return h, ok && h != nil
}

// RefreshGuard validates the refresh token in the JSON body. An unreadable body is
// treated like a missing token.
func RefreshGuard(gate *sessionauth.RefreshGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req sessionauth.RefreshRequest
			if r.Body != nil {
				_ = json.NewDecoder(r.Body).Decode(&req)
			}

			_, handle, rej := gate.AuthenticateRefresh(r.Context(), req)
			if rej != nil {
				WriteRejection(w, r, rej)
				return
			}

			ctx := context.WithValue(r.Context(), sessionHandleKey{}, handle)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
