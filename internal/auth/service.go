package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const bearerPrefix = "Bearer "

// TokenPair is the result of a successful register/authenticate/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields needed to create a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role
}

// Service orchestrates registration, login, refresh and logout over the
// injected collaborators. It holds no persistent state of its own.
type Service struct {
	users    UserStore
	registry TokenRegistry
	codec    *Codec
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the authentication service.
func NewService(users UserStore, registry TokenRegistry, codec *Codec, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if registry == nil {
		return nil, errors.New("auth: token registry is required")
	}
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	s := &Service{users: users, registry: registry, codec: codec, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Codec exposes the service's token codec to the request middleware.
func (s *Service) Codec() *Codec { return s.codec }

// Users exposes the user-lookup collaborator to the request middleware.
func (s *Service) Users() UserStore { return s.users }

// Registry exposes the token registry to the request middleware.
func (s *Service) Registry() TokenRegistry { return s.registry }

// Register creates a new account and issues its first token pair. Duplicate
// emails fail with ErrEmailTaken; nothing is revoked because a new identity
// owns no prior tokens.
func (s *Service) Register(ctx context.Context, in RegisterInput) (TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return TokenPair{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return TokenPair{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	if taken {
		return TokenPair{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return TokenPair{}, err
	}
	user := &User{
		Firstname:    strings.TrimSpace(in.FirstName),
		Lastname:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	// The store's unique constraint still backs the pre-check: a racing
	// duplicate insert resurfaces as ErrEmailTaken, never a raw storage error.
	if err := s.users.Create(ctx, user); err != nil {
		return TokenPair{}, err
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.registry.Record(ctx, user.ID, pair.AccessToken); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Authenticate verifies credentials and issues a fresh token pair. All prior
// live access tokens of the identity are revoked in the same transaction that
// records the new one, so only the newest session survives a login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return TokenPair{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.registry.Rotate(ctx, user.ID, pair.AccessToken); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Refresh exchanges a valid refresh token, presented as an Authorization
// header value, for a new access token. The refresh token is echoed back
// unrotated. A missing, malformed, unknown or expired token yields
// ok=false with no error: the endpoint's contract is a silent no-op.
func (s *Service) Refresh(ctx context.Context, bearerHeader string) (TokenPair, bool, error) {
	token, ok := bearerToken(bearerHeader)
	if !ok {
		return TokenPair{}, false, nil
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		return TokenPair{}, false, nil
	}
	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, false, nil
		}
		return TokenPair{}, false, err
	}
	if s.codec.Expired(claims) {
		return TokenPair{}, false, nil
	}

	access, err := s.codec.MintAccess(user.Email, user.Role)
	if err != nil {
		return TokenPair{}, false, err
	}
	if err := s.registry.Rotate(ctx, user.ID, access); err != nil {
		return TokenPair{}, false, err
	}
	return TokenPair{AccessToken: access, RefreshToken: token}, true, nil
}

// Logout revokes exactly the presented access token. Other tokens of the
// same identity are untouched. Missing or garbled headers and unknown
// tokens are silent no-ops, and repeating a logout changes nothing.
func (s *Service) Logout(ctx context.Context, bearerHeader string) error {
	token, ok := bearerToken(bearerHeader)
	if !ok {
		return nil
	}
	return s.registry.RevokeByToken(ctx, token)
}

// CurrentUser returns the sanitized account for email, or ErrNotFound.
func (s *Service) CurrentUser(ctx context.Context, email string) (*User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *Service) mintPair(user *User) (TokenPair, error) {
	access, err := s.codec.MintAccess(user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.MintRefresh(user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The prefix match is exact, as issued by the API itself.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
