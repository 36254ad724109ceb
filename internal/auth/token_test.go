package auth

import (
	"errors"
	"testing"
	"time"
)

func testCodec(t *testing.T, now time.Time, opts ...CodecOption) *Codec {
	t.Helper()
	all := append([]CodecOption{WithCodecClock(func() time.Time { return now })}, opts...)
	c, err := NewCodec(SigningConfig{
		Secret: []byte("test-secret"),
		Issuer: "health-hub-test",
	}, all...)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := testCodec(t, now)

	token, err := c.MintAccess("alice@healthhub.com", RoleAdmin)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != "alice@healthhub.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Role != string(RoleAdmin) {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti")
	}
	if got := claims.ExpiresAt.Time; !got.Equal(now.Add(c.AccessTTL())) {
		t.Fatalf("unexpected expiry %v", got)
	}
	if c.Expired(claims) {
		t.Fatal("fresh token reported expired")
	}
}

func TestCodecMintRequiresSubject(t *testing.T) {
	c := testCodec(t, time.Now())
	if _, err := c.Mint("  ", nil, time.Minute); err == nil {
		t.Fatal("expected error for blank subject")
	}
	if _, err := c.Mint("bob@healthhub.com", nil, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestCodecExpiryBoundaryInclusive(t *testing.T) {
	minted := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := testCodec(t, minted)

	token, err := c.MintAccess("alice@healthhub.com", RolePatient)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	boundary := minted.Add(c.AccessTTL())
	for _, tc := range []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before expiry", boundary.Add(-time.Second), false},
		{"at expiry", boundary, true},
		{"after expiry", boundary.Add(time.Second), true},
	} {
		later := testCodec(t, tc.now)
		if got := later.Expired(claims); got != tc.want {
			t.Fatalf("%s: Expired = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCodecDecodeStillWorksPastExpiry(t *testing.T) {
	minted := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := testCodec(t, minted)

	token, err := c.MintAccess("alice@healthhub.com", RoleAdmin)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	later := testCodec(t, minted.Add(48*time.Hour))
	claims, err := later.Decode(token)
	if err != nil {
		t.Fatalf("Decode of expired token: %v", err)
	}
	if !later.Expired(claims) {
		t.Fatal("expected token to be expired")
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	c := testCodec(t, now)
	token, err := c.MintAccess("alice@healthhub.com", RoleAdmin)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	other, err := NewCodec(SigningConfig{Secret: []byte("different"), Issuer: "health-hub-test"})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if _, err := other.Decode(token); !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	c := testCodec(t, time.Now())
	for _, raw := range []string{"", "   ", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := c.Decode(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Decode(%q): expected ErrTokenMalformed, got %v", raw, err)
		}
	}
}

func TestCodecRejectsWrongIssuer(t *testing.T) {
	now := time.Now()
	minter, err := NewCodec(SigningConfig{Secret: []byte("test-secret"), Issuer: "someone-else"},
		WithCodecClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, err := minter.MintAccess("alice@healthhub.com", RoleAdmin)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}

	c := testCodec(t, now)
	if _, err := c.Decode(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}
