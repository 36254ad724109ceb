package auth

import (
	"context"
	"time"
)

// TokenKind labels registry entries. Only access tokens are registered;
// refresh token validity is purely cryptographic.
type TokenKind string

// TokenKindBearer is the single kind recorded today.
const TokenKindBearer TokenKind = "BEARER"

// IssuedToken is the persistent record of a minted access token. Rows are
// marked expired/revoked, never deleted, and the flags are never reset.
type IssuedToken struct {
	ID        string
	UserID    string
	Token     string
	Kind      TokenKind
	Expired   bool
	Revoked   bool
	CreatedAt time.Time
}

// Live reports whether the entry still authenticates requests.
func (t IssuedToken) Live() bool {
	return !t.Expired && !t.Revoked
}

// TokenRegistry tracks liveness of issued access tokens so that
// cryptographically valid tokens can still be invalidated server-side.
type TokenRegistry interface {
	// Record inserts a live entry for tokenString owned by userID.
	Record(ctx context.Context, userID, tokenString string) error
	// IsLive reports whether a matching live entry exists. A token string
	// with no entry is not live, even if its signature verifies.
	IsLive(ctx context.Context, tokenString string) (bool, error)
	// RevokeAllForUser marks every live entry of userID expired and revoked.
	// A user with no live entries is a no-op, not an error.
	RevokeAllForUser(ctx context.Context, userID string) error
	// RevokeByToken marks the single matching entry expired and revoked.
	// Unknown token strings are a no-op.
	RevokeByToken(ctx context.Context, tokenString string) error
	// Rotate revokes all live entries of userID and records tokenString in
	// one transaction, so concurrent logins cannot interleave revocations
	// with each other's inserts.
	Rotate(ctx context.Context, userID, tokenString string) error
}
