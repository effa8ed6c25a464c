package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/sessionauth/internal/config"
	"github.com/MrEthical07/sessionauth/session"
	"github.com/MrEthical07/sessionauth/storage/memory"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestOpenBackendMemory(t *testing.T) {
	be, err := openBackend(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}})
	require.NoError(t, err)
	defer be.close()

	require.IsType(t, &memory.Users{}, be.users)
	require.IsType(t, &session.MemoryStore{}, be.store)

	cfg := &config.Config{Auth: config.AuthConfig{MaxLoginAttempts: 3}}
	require.Nil(t, loginLimiter(cfg, be), "throttling needs redis")
}

func TestOpenBackendRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	be, err := openBackend(context.Background(), &config.Config{Storage: config.StorageConfig{
		Backend:     config.BackendRedis,
		RedisURL:    "redis://" + mr.Addr() + "/0",
		RedisPrefix: "authd",
	}})
	require.NoError(t, err)
	defer be.close()

	require.NoError(t, be.store.SetRefreshToken(context.Background(), "u@example.com", "tok"))
	got, err := mr.Get("authd:u@example.com")
	require.NoError(t, err)
	require.Equal(t, "tok", got)

	cfg := &config.Config{Storage: config.StorageConfig{RedisPrefix: "authd"}}
	require.Nil(t, loginLimiter(cfg, be))
	cfg.Auth.MaxLoginAttempts = 3
	require.NotNil(t, loginLimiter(cfg, be))
}

func TestOpenBackendRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := openBackend(context.Background(), &config.Config{Storage: config.StorageConfig{
		Backend:  config.BackendRedis,
		RedisURL: "redis://" + addr + "/0",
	}})
	require.Error(t, err)
}

func TestMigrateRequiresPostgres(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0o600))

	err := app().Run([]string{"authd", "--config", path, "migrate"})
	require.ErrorContains(t, err, "postgres backend")
}

func TestSetupLogger(t *testing.T) {
	for _, env := range []string{config.EnvLocal, config.EnvDev, config.EnvProd, "other"} {
		require.NotNil(t, setupLogger(env))
	}
}
