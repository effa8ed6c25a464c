package sessionauth

import (
	"errors"
	"math"
	"testing"
)

func TestCredentialPolicyResolvePrecedence(t *testing.T) {
	p := NewCredentialPolicy(PolicyConfig{})

	tests := []struct {
		name string
		in   Overrides
		want Lifetimes
	}{
		{"defaults", Overrides{}, Lifetimes{600, 86400}},
		{"long expiry", Overrides{LongExpiry: true}, Lifetimes{31536000, 31536000}},
		{"explicit bearer over long expiry", Overrides{LongExpiry: true, BearerSeconds: int64Ptr(42)}, Lifetimes{42, 31536000}},
		{"explicit refresh over long expiry", Overrides{LongExpiry: true, RefreshSeconds: int64Ptr(7)}, Lifetimes{31536000, 7}},
		{"both explicit", Overrides{BearerSeconds: int64Ptr(5), RefreshSeconds: int64Ptr(50)}, Lifetimes{5, 50}},
		{"explicit zero honoured", Overrides{BearerSeconds: int64Ptr(0)}, Lifetimes{0, 86400}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Resolve(tc.in); got != tc.want {
				t.Fatalf("Resolve(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCredentialPolicyConfiguredDefaults(t *testing.T) {
	p := NewCredentialPolicy(PolicyConfig{BearerSeconds: 60, RefreshSeconds: 3600, LongExpirySeconds: 7200})

	if got := p.Defaults(); got != (Lifetimes{60, 3600}) {
		t.Fatalf("unexpected defaults %+v", got)
	}
	if got := p.Resolve(Overrides{LongExpiry: true}); got != (Lifetimes{7200, 7200}) {
		t.Fatalf("unexpected long expiry %+v", got)
	}
}

func TestOverridesValidateRejectsNegative(t *testing.T) {
	if err := (Overrides{BearerSeconds: int64Ptr(-1)}).Validate(); !errors.Is(err, ErrInvalidOverrides) {
		t.Fatalf("expected ErrInvalidOverrides for bearer, got %v", err)
	}
	if err := (Overrides{RefreshSeconds: int64Ptr(-5)}).Validate(); !errors.Is(err, ErrInvalidOverrides) {
		t.Fatalf("expected ErrInvalidOverrides for refresh, got %v", err)
	}
	if err := (Overrides{BearerSeconds: int64Ptr(0), RefreshSeconds: int64Ptr(0)}).Validate(); err != nil {
		t.Fatalf("expected zero to be accepted, got %v", err)
	}
}

func TestOverridesValidateRejectsOversized(t *testing.T) {
	for _, v := range []int64{MaxLifetimeSeconds + 1, 10_000_000_000, 18446744074, math.MaxInt64} {
		if err := (Overrides{BearerSeconds: int64Ptr(v)}).Validate(); !errors.Is(err, ErrInvalidOverrides) {
			t.Fatalf("bearer %d: expected ErrInvalidOverrides, got %v", v, err)
		}
		if err := (Overrides{RefreshSeconds: int64Ptr(v)}).Validate(); !errors.Is(err, ErrInvalidOverrides) {
			t.Fatalf("refresh %d: expected ErrInvalidOverrides, got %v", v, err)
		}
	}
	if err := (Overrides{BearerSeconds: int64Ptr(MaxLifetimeSeconds)}).Validate(); err != nil {
		t.Fatalf("expected the cap itself to be accepted, got %v", err)
	}
}
