package session

import (
	"context"
	"crypto/subtle"
	"errors"
)

var (
	// ErrMismatch is returned by Rotate when the stored token is not the presented one.
	ErrMismatch = errors.New("refresh token mismatch")
	// ErrUnavailable wraps backend failures (network, closed pool, script errors).
	ErrUnavailable = errors.New("session store unavailable")
	// ErrIdentityNotFound is returned by stores that require the identity to exist beforehand.
	ErrIdentityNotFound = errors.New("identity not found")
)

// Store is the durable per-identity refresh slot.
//
// Every method must be linearizable per identity. Implementations must never report a match
// for an empty presented token.
type Store interface {
	// Get returns the current refresh token, or ok=false when the slot is empty.
	Get(ctx context.Context, identity string) (token string, ok bool, err error)
	// SetRefreshToken unconditionally overwrites the slot.
	SetRefreshToken(ctx context.Context, identity, token string) error
	// Matches reports whether presented equals the stored token.
	Matches(ctx context.Context, identity, presented string) (bool, error)
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, identity string) error
	// Rotate replaces presented with next, failing with ErrMismatch if presented is no longer stored.
	Rotate(ctx context.Context, identity, presented, next string) error
}

// Equal compares two tokens in constant time. Empty values never compare equal.
func Equal(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
