package password

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPassword is returned by Hash for an empty input.
	ErrEmptyPassword = errors.New("password is empty")
	// ErrInvalidHash is returned by Verify when the stored hash cannot be parsed.
	ErrInvalidHash = errors.New("invalid password hash")
)

// Hasher hashes and verifies passwords. Implementations are safe for concurrent use.
type Hasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. A mismatch is (false, nil); an
	// unparseable hash is an error wrapping ErrInvalidHash.
	Verify(password, encoded string) (bool, error)
}

// Algorithm names accepted by New.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Options selects and tunes the hashing algorithm.
type Options struct {
	Algorithm  string
	Argon2     Argon2Config
	BcryptCost int
}

// New returns an Auto hasher that hashes with the configured algorithm and verifies both formats.
func New(opts Options) (*Auto, error) {
	argon, err := NewArgon2(opts.Argon2)
	if err != nil {
		return nil, err
	}
	bc, err := NewBcrypt(opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	var primary Hasher
	switch strings.ToLower(strings.TrimSpace(opts.Algorithm)) {
	case "", AlgorithmArgon2id:
		primary = argon
	case AlgorithmBcrypt:
		primary = bc
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", opts.Algorithm)
	}

	return &Auto{primary: primary, argon: argon, bcrypt: bc}, nil
}

// Auto hashes with its primary algorithm and verifies whichever format the stored hash uses.
type Auto struct {
	primary Hasher
	argon   *Argon2
	bcrypt  *Bcrypt
}

func (a *Auto) Hash(password string) (string, error) {
	return a.primary.Hash(password)
}

func (a *Auto) Verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$"+argon2ID+"$"):
		return a.argon.Verify(password, encoded)
	case strings.HasPrefix(encoded, "$2"):
		return a.bcrypt.Verify(password, encoded)
	default:
		return false, fmt.Errorf("%w: unknown format", ErrInvalidHash)
	}
}

var (
	_ Hasher = (*Auto)(nil)
	_ Hasher = (*Argon2)(nil)
	_ Hasher = (*Bcrypt)(nil)
)
