package sessionauth

import (
	"context"
	"strings"
	"time"
)

// Identity is a normalized user email address.
type Identity string

// NormalizeIdentity trims surrounding whitespace and lower-cases raw. It is idempotent.
func NormalizeIdentity(raw string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(raw)))
}

func (i Identity) String() string { return string(i) }

// Token type labels carried in IssuedToken.TokenType.
const (
	TokenTypeBearer  = "Bearer"
	TokenTypeRefresh = "Refresh"
)

// IssuedToken is one signed credential with its type label and lifetime in seconds.
type IssuedToken struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// TokenPair is the body returned by login and refresh.
type TokenPair struct {
	Bearer  IssuedToken `json:"bearerToken"`
	Refresh IssuedToken `json:"refreshToken"`
}

// Overrides are the caller-supplied expiry hints accepted at login.
type Overrides struct {
	LongExpiry     bool   `json:"longExpiry"`
	BearerSeconds  *int64 `json:"bearerExpiresInSeconds"`
	RefreshSeconds *int64 `json:"refreshExpiresInSeconds"`
}

// MaxLifetimeSeconds caps every credential lifetime at ten years so the
// seconds-to-Duration conversion cannot overflow.
const MaxLifetimeSeconds int64 = 10 * 365 * 24 * 60 * 60

// Validate rejects explicit lifetimes outside [0, MaxLifetimeSeconds]. Zero is allowed.
func (o Overrides) Validate() error {
	if !validLifetime(o.BearerSeconds) || !validLifetime(o.RefreshSeconds) {
		return ErrInvalidOverrides
	}
	return nil
}

func validLifetime(seconds *int64) bool {
	return seconds == nil || (*seconds >= 0 && *seconds <= MaxLifetimeSeconds)
}

// Lifetimes are resolved credential lifetimes in seconds.
type Lifetimes struct {
	BearerSeconds  int64
	RefreshSeconds int64
}

// UserRecord is the stored account as seen by the session core and the profile routes.
type UserRecord struct {
	Email        Identity
	PasswordHash string
	FirstName    *string
	LastName     *string
	Address      *string
	DOB          *time.Time
	CreatedAt    time.Time
}

// ProfileUpdate replaces the mutable profile fields of a user.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Address   string
	DOB       time.Time
}

// UserRepository is the user persistence collaborator.
//
// FindByIdentity returns ErrUserNotFound when the identity is unknown. Create returns
// ErrUserExists for a duplicate identity. UpdateProfile returns ErrUserNotFound when the
// identity is unknown and the updated record otherwise.
type UserRepository interface {
	FindByIdentity(ctx context.Context, id Identity) (UserRecord, error)
	Create(ctx context.Context, user UserRecord) error
	UpdateProfile(ctx context.Context, id Identity, update ProfileUpdate) (UserRecord, error)
}
