package password

import (
	"errors"
	"strings"
	"testing"
)

func fastArgon2() Argon2Config {
	return Argon2Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgon2HashAndVerify(t *testing.T) {
	h, err := NewArgon2(fastArgon2())
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}

	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}

	ok, err := h.Verify("correct-horse", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong-horse", encoded)
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestArgon2SaltsDiffer(t *testing.T) {
	h, err := NewArgon2(fastArgon2())
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("expected distinct salts to yield distinct hashes")
	}
}

func TestArgon2RejectsWeakConfig(t *testing.T) {
	cfg := fastArgon2()
	cfg.Memory = 1024
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected low memory to be rejected")
	}
}

func TestArgon2VerifyRejectsMalformedHash(t *testing.T) {
	h, err := NewArgon2(fastArgon2())
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	cases := []string{
		"",
		"$argon2id$v=19$m=8192,t=1,p=1$onlysalt",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5",
	}
	for _, tc := range cases {
		if _, err := h.Verify("x", tc); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("%q: expected ErrInvalidHash, got %v", tc, err)
		}
	}
}

func TestBcryptHashAndVerify(t *testing.T) {
	h, err := NewBcrypt(4)
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}
	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := h.Verify("correct-horse", encoded); err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if ok, err := h.Verify("nope", encoded); err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
	if _, err := h.Verify("x", "$2a$garbage"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestEmptyPasswordRejected(t *testing.T) {
	a, _ := NewArgon2(fastArgon2())
	b, _ := NewBcrypt(4)
	for _, h := range []Hasher{a, b} {
		if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
			t.Fatalf("%T: expected ErrEmptyPassword, got %v", h, err)
		}
	}
}

func TestAutoVerifiesBothFormats(t *testing.T) {
	auto, err := New(Options{Algorithm: AlgorithmBcrypt, Argon2: fastArgon2(), BcryptCost: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bcryptHash, err := auto.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(bcryptHash, "$2") {
		t.Fatalf("expected bcrypt primary, got %s", bcryptHash)
	}

	argon, _ := NewArgon2(fastArgon2())
	argonHash, _ := argon.Hash("pw")

	for _, encoded := range []string{bcryptHash, argonHash} {
		ok, err := auto.Verify("pw", encoded)
		if err != nil || !ok {
			t.Fatalf("expected %q to verify, got ok=%v err=%v", encoded[:8], ok, err)
		}
	}

	if _, err := auto.Verify("pw", "plaintext"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash for unknown format, got %v", err)
	}
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := New(Options{Algorithm: "md5"}); err == nil {
		t.Fatal("expected unknown algorithm to be rejected")
	}
}
