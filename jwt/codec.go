package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned by Verify when the embedded expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned by Verify for structurally invalid input.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalidSignature is returned by Verify for well-formed tokens whose signature or content does not match.
	ErrInvalidSignature = errors.New("token signature invalid")
)

// Kind distinguishes bearer credentials from refresh credentials.
type Kind uint8

const (
	// KindBearer marks short-lived credentials presented in the Authorization header.
	KindBearer Kind = iota + 1
	// KindRefresh marks long-lived credentials used only to obtain a new pair.
	KindRefresh
)

// String returns the token_type label used on the wire.
func (k Kind) String() string {
	switch k {
	case KindBearer:
		return "Bearer"
	case KindRefresh:
		return "Refresh"
	default:
		return "Unknown"
	}
}

// Config defines the codec secrets and clock.
//
// RefreshSecret may be left empty, in which case BearerSecret signs both kinds.
type Config struct {
	BearerSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Now           func() time.Time
}

// Grant describes a single credential to issue.
type Grant struct {
	Subject  string
	Kind     Kind
	Lifetime time.Duration
	// ID becomes the jti claim. Callers pass a fresh value per issuance so that two
	// credentials issued within the same second never collide.
	ID string
}

// Claims is the signed payload of every credential.
type Claims struct {
	Email string `json:"email"`
	Kind  string `json:"knd"`
	jwt.RegisteredClaims
}

// Codec issues and verifies credentials. It holds no mutable state and is safe for concurrent use.
type Codec struct {
	bearerKey  []byte
	refreshKey []byte
	issuer     string
	now        func() time.Time
}

// NewCodec validates cfg and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.BearerSecret) == 0 {
		return nil, errors.New("bearer secret required")
	}
	refreshKey := cfg.RefreshSecret
	if len(refreshKey) == 0 {
		refreshKey = cfg.BearerSecret
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		bearerKey:  cloneBytes(cfg.BearerSecret),
		refreshKey: cloneBytes(refreshKey),
		issuer:     strings.TrimSpace(cfg.Issuer),
		now:        now,
	}, nil
}

// Issue signs a credential for g. The expiry is the current second plus g.Lifetime,
// truncated to whole seconds as the exp claim requires.
func (c *Codec) Issue(g Grant) (string, error) {
	key, err := c.key(g.Kind)
	if err != nil {
		return "", err
	}
	if g.Subject == "" {
		return "", errors.New("subject required")
	}
	if g.Lifetime < 0 {
		return "", errors.New("negative lifetime")
	}

	now := c.now().Truncate(time.Second)
	claims := Claims{
		Email: g.Subject,
		Kind:  g.Kind.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   g.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(g.Lifetime.Truncate(time.Second))),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        g.ID,
			Issuer:    c.issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Verify checks the signature, expiry and kind of token and returns its subject.
//
// Errors wrap exactly one of ErrMalformed, ErrInvalidSignature or ErrExpired.
func (c *Codec) Verify(token string, kind Kind) (string, error) {
	key, err := c.key(kind)
	if err != nil {
		return "", err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		options = append(options, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	_, err = jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return "", classify(err)
	}

	if claims.Kind != kind.String() {
		return "", fmt.Errorf("%w: expected %s credential", ErrInvalidSignature, kind)
	}
	if claims.Email == "" || claims.Email != claims.Subject {
		return "", fmt.Errorf("%w: subject mismatch", ErrInvalidSignature)
	}

	return claims.Email, nil
}

func (c *Codec) key(kind Kind) ([]byte, error) {
	switch kind {
	case KindBearer:
		return c.bearerKey, nil
	case KindRefresh:
		return c.refreshKey, nil
	default:
		return nil, fmt.Errorf("unsupported credential kind %d", kind)
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
