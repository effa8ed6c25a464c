package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/MrEthical07/sessionauth"
	"github.com/MrEthical07/sessionauth/session"
	"github.com/MrEthical07/sessionauth/session/sessiontest"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Integration tests run against a real PostgreSQL started with testcontainers-go:
//
//	GO_TEST_INTEGRATION=1 go test ./storage/postgres -v -race -count=1

// startPostgres starts a container, applies the embedded migrations and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// The port can accept connections before the server finishes initdb.
	require.Eventually(t, func() bool { return Migrate(ctx, dsn) == nil }, 30*time.Second, 500*time.Millisecond)
	return dsn
}

func newStorage(t *testing.T, dsn string) *Storage {
	t.Helper()
	st, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	_, err = st.db.Exec(context.Background(), `TRUNCATE users`)
	require.NoError(t, err)
	return st
}

func seedUser(t *testing.T, st *Storage, email string) {
	t.Helper()
	err := st.Create(context.Background(), sessionauth.UserRecord{
		Email:        sessionauth.Identity(email),
		PasswordHash: "$2a$04$placeholder",
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestPostgres(t *testing.T) {
	dsn := startPostgres(t)

	t.Run("SessionStore", func(t *testing.T) {
		sessiontest.Run(t, sessiontest.Factory{
			New: func(t *testing.T) session.Store { return newStorage(t, dsn) },
			Seed: func(t *testing.T, store session.Store, identity string) {
				seedUser(t, store.(*Storage), identity)
			},
		})
	})

	t.Run("MigrateIsIdempotent", func(t *testing.T) {
		require.NoError(t, Migrate(context.Background(), dsn))
	})

	t.Run("CreateAndFind", func(t *testing.T) {
		st := newStorage(t, dsn)
		ctx := context.Background()

		seedUser(t, st, "user@example.com")

		u, err := st.FindByIdentity(ctx, "user@example.com")
		require.NoError(t, err)
		require.Equal(t, sessionauth.Identity("user@example.com"), u.Email)
		require.Nil(t, u.FirstName)
		require.Nil(t, u.DOB)

		err = st.Create(ctx, sessionauth.UserRecord{Email: "user@example.com", PasswordHash: "x", CreatedAt: time.Now()})
		require.ErrorIs(t, err, sessionauth.ErrUserExists)

		_, err = st.FindByIdentity(ctx, "missing@example.com")
		require.ErrorIs(t, err, sessionauth.ErrUserNotFound)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		st := newStorage(t, dsn)
		ctx := context.Background()
		seedUser(t, st, "user@example.com")

		dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
		u, err := st.UpdateProfile(ctx, "user@example.com", sessionauth.ProfileUpdate{
			FirstName: "Ada", LastName: "Lovelace", Address: "12 Example St", DOB: dob,
		})
		require.NoError(t, err)
		require.Equal(t, "Ada", *u.FirstName)
		require.Equal(t, "12 Example St", *u.Address)
		require.True(t, u.DOB.Equal(dob))

		_, err = st.UpdateProfile(ctx, "missing@example.com", sessionauth.ProfileUpdate{DOB: dob})
		require.ErrorIs(t, err, sessionauth.ErrUserNotFound)
	})

	t.Run("SessionRequiresUser", func(t *testing.T) {
		st := newStorage(t, dsn)
		err := st.SetRefreshToken(context.Background(), "ghost@example.com", "t")
		require.ErrorIs(t, err, session.ErrIdentityNotFound)
		require.NoError(t, st.Clear(context.Background(), "ghost@example.com"))
	})

	t.Run("ClosedPoolIsUnavailable", func(t *testing.T) {
		st, err := New(context.Background(), dsn)
		require.NoError(t, err)
		st.Close()

		_, _, err = st.Get(context.Background(), "user@example.com")
		require.ErrorIs(t, err, session.ErrUnavailable)
	})
}
