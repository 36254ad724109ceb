package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// SigningConfig carries the symmetric signing key and the two standing token
// lifetimes. It is injected into NewCodec at startup; nothing in this package
// reads ambient configuration.
type SigningConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims are the verified contents of a token. They are recomputed from the
// signed string on every decode and never persisted.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec mints and verifies compact HS256-signed tokens. Verification needs no
// server-side lookup; liveness is the TokenRegistry's concern.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec from cfg. The secret is required; TTLs fall
// back to the package defaults when unset.
func NewCodec(cfg SigningConfig, opts ...CodecOption) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	c := &Codec{
		secret:     cfg.Secret,
		issuer:     strings.TrimSpace(cfg.Issuer),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = defaultAccessTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = defaultRefreshTTL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Mint signs a token for subject carrying iat=now, exp=now+ttl, a unique jti
// and any extra claims. The signing method is always HS256; there is no
// unsigned fallback.
func (c *Codec) Mint(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be greater than zero")
	}

	now := c.now().UTC()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	claims["jti"] = uuid.NewString()
	if c.issuer != "" {
		claims["iss"] = c.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// MintAccess mints a short-lived access token carrying the subject's role.
func (c *Codec) MintAccess(subject string, role Role) (string, error) {
	return c.Mint(subject, map[string]any{"role": string(role)}, c.accessTTL)
}

// MintRefresh mints a long-lived refresh token.
func (c *Codec) MintRefresh(subject string) (string, error) {
	return c.Mint(subject, nil, c.refreshTTL)
}

// Decode verifies structure and signature and returns the claims. Expiry is
// deliberately not checked here: callers compose Expired with registry
// liveness so the middleware can treat the predicates independently.
func (c *Codec) Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrTokenMalformed
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// Expired reports whether the claims are at or past their expiry. The
// boundary instant itself counts as expired.
func (c *Codec) Expired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.Time.After(c.now())
}
