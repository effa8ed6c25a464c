package sessionauth

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/sessionauth/jwt"
	"github.com/MrEthical07/sessionauth/password"
	"github.com/MrEthical07/sessionauth/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[Identity]UserRecord
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[Identity]UserRecord{}}
}

func (f *fakeUsers) FindByIdentity(_ context.Context, id Identity) (UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u UserRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return ErrUserExists
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id Identity, p ProfileUpdate) (UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	u.FirstName, u.LastName, u.Address, u.DOB = &p.FirstName, &p.LastName, &p.Address, &p.DOB
	f.users[id] = u
	return u, nil
}

func newTestHasher(t *testing.T) password.Hasher {
	t.Helper()
	h, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}
	return h
}

func sequentialIDs() func() string {
	var n atomic.Uint64
	return func() string {
		return "tok-" + strconv.FormatUint(n.Add(1), 10)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.BearerSecret = []byte("bearer-test-secret")
	cfg.JWT.RefreshSecret = []byte("refresh-test-secret")
	cfg.Password.Argon2 = password.Argon2Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	cfg.Password.BcryptCost = 4
	cfg.Metrics = MetricsConfig{Enabled: true, EnableLatencyHistograms: true}
	return cfg
}

type testEngine struct {
	*Engine
	clock *testClock
	store session.Store
	users *fakeUsers
}

func newTestEngine(t *testing.T, store session.Store) *testEngine {
	t.Helper()

	if store == nil {
		store = session.NewMemoryStore()
	}
	clock := newTestClock()
	users := newFakeUsers()

	engine, err := New().
		WithConfig(testConfig()).
		WithSessionStore(store).
		WithUserRepository(users).
		WithPasswordHasher(newTestHasher(t)).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEngine{Engine: engine, clock: clock, store: store, users: users}
}

func newTestRedisStore(t *testing.T) (*miniredis.Miniredis, *session.RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, session.NewRedisStore(rdb, "test")
}

func newTestCodec(t *testing.T, clock *testClock) *jwt.Codec {
	t.Helper()
	codec, err := jwt.NewCodec(jwt.Config{
		BearerSecret:  []byte("bearer-test-secret"),
		RefreshSecret: []byte("refresh-test-secret"),
		Now:           clock.Now,
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func int64Ptr(v int64) *int64 { return &v }
