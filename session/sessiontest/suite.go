// Package sessiontest holds the behavioural suite every session.Store implementation must pass.
package sessiontest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MrEthical07/sessionauth/session"
)

// Factory returns a fresh, empty store and registers its cleanup on t.
// Seed is called with every identity the suite uses before the first operation, for stores
// that need the identity to exist (postgres user rows); it may be nil.
type Factory struct {
	New  func(t *testing.T) session.Store
	Seed func(t *testing.T, store session.Store, identity string)
}

// Run executes the suite.
func Run(t *testing.T, f Factory) {
	t.Helper()

	t.Run("EmptySlot", func(t *testing.T) { testEmptySlot(t, f) })
	t.Run("OverwriteRevokesPrevious", func(t *testing.T) { testOverwrite(t, f) })
	t.Run("ClearIsIdempotent", func(t *testing.T) { testClear(t, f) })
	t.Run("RotateCompareAndSet", func(t *testing.T) { testRotate(t, f) })
	t.Run("ConcurrentRotateSingleWinner", func(t *testing.T) { testConcurrentRotate(t, f) })
	t.Run("IdentitiesAreIsolated", func(t *testing.T) { testIsolation(t, f) })
}

func prepare(t *testing.T, f Factory, identities ...string) session.Store {
	t.Helper()
	store := f.New(t)
	if f.Seed != nil {
		for _, id := range identities {
			f.Seed(t, store, id)
		}
	}
	return store
}

func testEmptySlot(t *testing.T, f Factory) {
	ctx := context.Background()
	store := prepare(t, f, "empty@example.com")

	token, ok, err := store.Get(ctx, "empty@example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || token != "" {
		t.Fatalf("expected empty slot, got %q", token)
	}

	for _, presented := range []string{"", "anything"} {
		match, err := store.Matches(ctx, "empty@example.com", presented)
		if err != nil {
			t.Fatalf("matches: %v", err)
		}
		if match {
			t.Fatalf("empty slot must not match %q", presented)
		}
	}
}

func testOverwrite(t *testing.T, f Factory) {
	ctx := context.Background()
	const id = "overwrite@example.com"
	store := prepare(t, f, id)

	if err := store.SetRefreshToken(ctx, id, "first"); err != nil {
		t.Fatalf("set first: %v", err)
	}
	if err := store.SetRefreshToken(ctx, id, "second"); err != nil {
		t.Fatalf("set second: %v", err)
	}

	token, ok, err := store.Get(ctx, id)
	if err != nil || !ok || token != "second" {
		t.Fatalf("expected second, got %q ok=%v err=%v", token, ok, err)
	}
	if match, _ := store.Matches(ctx, id, "first"); match {
		t.Fatal("superseded token must not match")
	}
	if match, _ := store.Matches(ctx, id, "second"); !match {
		t.Fatal("current token must match")
	}
	if match, _ := store.Matches(ctx, id, ""); match {
		t.Fatal("empty presented token must never match")
	}
}

func testClear(t *testing.T, f Factory) {
	ctx := context.Background()
	const id = "clear@example.com"
	store := prepare(t, f, id)

	if err := store.SetRefreshToken(ctx, id, "token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Clear(ctx, id); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(ctx, id); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, ok, _ := store.Get(ctx, id); ok {
		t.Fatal("expected empty slot after clear")
	}
	if match, _ := store.Matches(ctx, id, "token"); match {
		t.Fatal("cleared token must not match")
	}
}

func testRotate(t *testing.T, f Factory) {
	ctx := context.Background()
	const id = "rotate@example.com"
	store := prepare(t, f, id)

	if err := store.Rotate(ctx, id, "nothing-stored", "next"); !errors.Is(err, session.ErrMismatch) {
		t.Fatalf("rotate on empty slot: expected ErrMismatch, got %v", err)
	}

	if err := store.SetRefreshToken(ctx, id, "current"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Rotate(ctx, id, "stale", "next"); !errors.Is(err, session.ErrMismatch) {
		t.Fatalf("rotate with stale token: expected ErrMismatch, got %v", err)
	}
	if err := store.Rotate(ctx, id, "current", "next"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if err := store.Rotate(ctx, id, "current", "again"); !errors.Is(err, session.ErrMismatch) {
		t.Fatalf("second rotate with consumed token: expected ErrMismatch, got %v", err)
	}

	token, ok, err := store.Get(ctx, id)
	if err != nil || !ok || token != "next" {
		t.Fatalf("expected next, got %q ok=%v err=%v", token, ok, err)
	}
}

func testConcurrentRotate(t *testing.T, f Factory) {
	ctx := context.Background()
	const id = "race@example.com"
	store := prepare(t, f, id)

	if err := store.SetRefreshToken(ctx, id, "origin"); err != nil {
		t.Fatalf("set: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results <- store.Rotate(ctx, id, "origin", fmt.Sprintf("next-%d", i))
		}(i)
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, session.ErrMismatch):
		default:
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one rotate winner, got %d", success)
	}
}

func testIsolation(t *testing.T, f Factory) {
	ctx := context.Background()
	store := prepare(t, f, "a@example.com", "b@example.com")

	if err := store.SetRefreshToken(ctx, "a@example.com", "token-a"); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if match, _ := store.Matches(ctx, "b@example.com", "token-a"); match {
		t.Fatal("token of one identity must not match another")
	}
	if err := store.Clear(ctx, "b@example.com"); err != nil {
		t.Fatalf("clear b: %v", err)
	}
	if match, _ := store.Matches(ctx, "a@example.com", "token-a"); !match {
		t.Fatal("clearing b must not affect a")
	}
}
