// Package httpapi exposes the session engine over HTTP: registration, login, refresh,
// logout and the profile routes, plus health and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Options configures NewRouter.
type Options struct {
	Logger *slog.Logger
	// Timeout bounds every request; zero disables it.
	Timeout time.Duration
	// Ready reports readiness for /healthz. Nil means always ready.
	Ready func() bool
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Now is used for profile date validation. Defaults to time.Now.
	Now func() time.Time
	// LoginLimiter throttles failed logins when set.
	LoginLimiter LoginLimiter
}

// LoginLimiter is satisfied by *rate.Limiter.
type LoginLimiter interface {
	CheckLogin(ctx context.Context, identity string) error
	RecordFailure(ctx context.Context, identity string) error
	Reset(ctx context.Context, identity string) error
}

// NewRouter builds the chi router for engine.
func NewRouter(engine *sessionauth.Engine, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	root := chi.NewRouter()
	root.Use(
		chimw.RequestID,
		chimw.Recoverer,
		middleware.Logging(opts.Logger),
	)
	if opts.Timeout > 0 {
		root.Use(chimw.Timeout(opts.Timeout))
	}

	h := &handlers{
		sessions: engine.Sessions(),
		users:    engine.Users(),
		limiter:  opts.LoginLimiter,
		now:      opts.Now,
	}

	root.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if opts.Ready == nil || opts.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	if opts.Metrics != nil {
		root.Handle("/metrics", opts.Metrics)
	}

	root.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoQueryParams())
			r.Post("/register", h.register)
			r.Post("/login", h.login)

			r.With(middleware.RefreshGuard(engine.RefreshGate())).Post("/refresh", h.refresh)
			r.With(middleware.RefreshGuard(engine.RefreshGate())).Post("/logout", h.logout)
		})

		r.With(middleware.Authenticate(engine.LenientGate())).Get("/{email}/profile", h.getProfile)
		r.With(
			middleware.Authenticate(engine.StrictGate()),
			middleware.RequireIdentity(emailParam),
		).Put("/{email}/profile", h.putProfile)
	})

	return root
}

func emailParam(r *http.Request) string {
	return chi.URLParam(r, "email")
}
