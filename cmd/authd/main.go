// Command authd serves the sessionauth HTTP API.
//
//	authd --config config.yaml serve
//	authd --config config.yaml migrate
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/internal/config"
	"github.com/MrEthical07/sessionauth/internal/httpapi"
	"github.com/MrEthical07/sessionauth/internal/rate"
	promexport "github.com/MrEthical07/sessionauth/metrics/export/prometheus"
	"github.com/MrEthical07/sessionauth/session"
	"github.com/MrEthical07/sessionauth/storage/memory"
	"github.com/MrEthical07/sessionauth/storage/postgres"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "authd",
		Usage:   "session authentication service",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations",
				Action: migrate,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	return cfg, log, nil
}

func migrate(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate requires the postgres backend, got %q", cfg.Storage.Backend)
	}

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()
	if err := postgres.Migrate(ctx, cfg.Storage.DatabaseURL); err != nil {
		return err
	}
	log.Info("migrations_applied")
	return nil
}

// backend is the storage selected by configuration.
type backend struct {
	users sessionauth.UserRepository
	store session.Store
	// redis is set for the redis backend only.
	redis redis.UniversalClient
	close func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		// Users stay in process memory; only refresh slots are shared.
		return &backend{
			users: memory.NewUsers(),
			store: session.NewRedisStore(client, cfg.Storage.RedisPrefix),
			redis: client,
			close: func() { _ = client.Close() },
		}, nil

	case config.BackendPostgres:
		st, err := postgres.New(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &backend{users: st, store: st, close: st.Close}, nil

	default:
		return &backend{
			users: memory.NewUsers(),
			store: session.NewMemoryStore(),
			close: func() {},
		}, nil
	}
}

// loginLimiter returns nil unless throttling is configured and Redis is available.
func loginLimiter(cfg *config.Config, be *backend) *rate.Limiter {
	if cfg.Auth.MaxLoginAttempts == 0 || be.redis == nil {
		return nil
	}
	return rate.New(be.redis, rate.Config{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		Cooldown:         cfg.Auth.LoginCooldown,
		Prefix:           cfg.Storage.RedisPrefix,
	})
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.Info("starting application", "env", cfg.Env, "storage", cfg.Storage.Backend)

	rootCtx, rootCancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	openCtx, openCancel := context.WithTimeout(rootCtx, 10*time.Second)
	be, err := openBackend(openCtx, cfg)
	openCancel()
	if err != nil {
		log.Error("storage_connect_failed", slog.String("err", err.Error()))
		return err
	}
	defer be.close()

	builder := sessionauth.New().
		WithConfig(cfg.Engine()).
		WithSessionStore(be.store).
		WithUserRepository(be.users)
	if cfg.Audit.Enabled {
		builder = builder.WithAuditSink(sessionauth.NewSlogSink(log))
	}
	engine, err := builder.Build()
	if err != nil {
		log.Error("engine_build_failed", slog.String("err", err.Error()))
		return err
	}
	defer engine.Close()

	metrics, err := promexport.Handler(engine)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	opts := httpapi.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Request,
		Ready:   ready.Load,
		Metrics: metrics,
	}
	if limiter := loginLimiter(cfg, be); limiter != nil {
		opts.LoginLimiter = limiter
		log.Info("login_throttle_enabled", "max_attempts", cfg.Auth.MaxLoginAttempts)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           httpapi.NewRouter(engine, opts),
		ReadHeaderTimeout: cfg.Timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	ready.Store(true)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErr:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
			return err
		}
	}

	ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
