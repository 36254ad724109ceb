package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeUserStore struct {
	byEmail map[string]*User
	nextID  int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
	}
	f.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	cp := *u
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUserStore) Find(_ context.Context, id string) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

type fakeRegistry struct {
	tokens map[string]*IssuedToken
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{tokens: make(map[string]*IssuedToken)}
}

func (f *fakeRegistry) Record(_ context.Context, userID, token string) error {
	f.tokens[token] = &IssuedToken{UserID: userID, Token: token, Kind: TokenKindBearer}
	return nil
}

func (f *fakeRegistry) IsLive(_ context.Context, token string) (bool, error) {
	t, ok := f.tokens[token]
	if !ok {
		return false, nil
	}
	return t.Live(), nil
}

func (f *fakeRegistry) RevokeAllForUser(_ context.Context, userID string) error {
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Expired = true
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeRegistry) RevokeByToken(_ context.Context, token string) error {
	if t, ok := f.tokens[token]; ok {
		t.Expired = true
		t.Revoked = true
	}
	return nil
}

func (f *fakeRegistry) Rotate(ctx context.Context, userID, token string) error {
	if err := f.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	return f.Record(ctx, userID, token)
}

func (f *fakeRegistry) liveCount() int {
	n := 0
	for _, t := range f.tokens {
		if t.Live() {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *fakeRegistry) {
	t.Helper()
	users := newFakeUserStore()
	registry := newFakeRegistry()
	codec, err := NewCodec(SigningConfig{Secret: []byte("test-secret"), Issuer: "health-hub-test"})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svc, err := NewService(users, registry, codec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, users, registry
}

func register(t *testing.T, svc *Service, email string) TokenPair {
	t.Helper()
	pair, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		LastName:  "Silva",
		Email:     email,
		Password:  "1234",
		Role:      RolePatient,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return pair
}

func TestRegisterIssuesAndRecordsTokens(t *testing.T) {
	svc, users, registry := newTestService(t)
	ctx := context.Background()

	pair := register(t, svc, "alice@healthhub.com")
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	live, err := registry.IsLive(ctx, pair.AccessToken)
	if err != nil || !live {
		t.Fatalf("access token should be recorded live, got %v %v", live, err)
	}

	u, err := users.FindByEmail(ctx, "alice@healthhub.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.PasswordHash == "1234" || u.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if err := VerifyPassword(u.PasswordHash, "1234"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "Alice@HealthHub.com ")

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "alice@healthhub.com",
		Password:  "secret",
		Role:      RoleAdmin,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "", Password: "x", Role: RolePatient}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty email, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "x", Role: Role("BOSS")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad role, got %v", err)
	}
}

func TestAuthenticateRotatesTokens(t *testing.T) {
	svc, _, registry := newTestService(t)
	ctx := context.Background()

	first := register(t, svc, "alice@healthhub.com")

	second, err := svc.Authenticate(ctx, "alice@healthhub.com", "1234")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if live, _ := registry.IsLive(ctx, first.AccessToken); live {
		t.Fatal("previous access token must be revoked by login")
	}
	if live, _ := registry.IsLive(ctx, second.AccessToken); !live {
		t.Fatal("new access token must be live")
	}
	if registry.liveCount() != 1 {
		t.Fatalf("exactly one live token expected, got %d", registry.liveCount())
	}
}

func TestAuthenticateWrongPasswordLeavesRegistryUntouched(t *testing.T) {
	svc, _, registry := newTestService(t)
	ctx := context.Background()

	pair := register(t, svc, "alice@healthhub.com")
	before := registry.liveCount()

	_, err := svc.Authenticate(ctx, "alice@healthhub.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if registry.liveCount() != before {
		t.Fatal("failed login must not touch the registry")
	}
	if live, _ := registry.IsLive(ctx, pair.AccessToken); !live {
		t.Fatal("existing token must stay live after failed login")
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Authenticate(context.Background(), "ghost@healthhub.com", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshSilentNoOpPaths(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, header := range []string{
		"",
		"Basic dXNlcjpwYXNz",
		"Bearer ",
		"Bearer not-a-token",
	} {
		pair, ok, err := svc.Refresh(ctx, header)
		if err != nil {
			t.Fatalf("Refresh(%q): unexpected error %v", header, err)
		}
		if ok {
			t.Fatalf("Refresh(%q): expected silent no-op", header)
		}
		if pair.AccessToken != "" || pair.RefreshToken != "" {
			t.Fatalf("Refresh(%q): expected empty pair", header)
		}
	}
}

func TestRefreshUnknownSubjectIsSilent(t *testing.T) {
	svc, _, _ := newTestService(t)

	token, err := svc.Codec().MintRefresh("ghost@healthhub.com")
	if err != nil {
		t.Fatalf("MintRefresh: %v", err)
	}
	_, ok, err := svc.Refresh(context.Background(), bearerPrefix+token)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if ok {
		t.Fatal("unknown subject must be a silent no-op")
	}
}

func TestRefreshExpiredTokenIsSilent(t *testing.T) {
	users := newFakeUserStore()
	registry := newFakeRegistry()

	past := time.Now().Add(-48 * time.Hour)
	oldCodec, err := NewCodec(SigningConfig{Secret: []byte("test-secret"), Issuer: "health-hub-test"},
		WithCodecClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svcThen, err := NewService(users, registry, oldCodec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	pair := register(t, svcThen, "alice@healthhub.com")

	nowCodec, err := NewCodec(SigningConfig{Secret: []byte("test-secret"), Issuer: "health-hub-test"})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svcNow, err := NewService(users, registry, nowCodec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, ok, err := svcNow.Refresh(context.Background(), bearerPrefix+pair.AccessToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if ok {
		t.Fatal("expired token must be a silent no-op")
	}
}

func TestRefreshRotatesAccessAndEchoesRefresh(t *testing.T) {
	svc, _, registry := newTestService(t)
	ctx := context.Background()

	first := register(t, svc, "alice@healthhub.com")

	pair, ok, err := svc.Refresh(ctx, bearerPrefix+first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !ok {
		t.Fatal("expected refresh to succeed")
	}
	if pair.RefreshToken != first.RefreshToken {
		t.Fatal("refresh token must be echoed back unrotated")
	}
	if pair.AccessToken == first.AccessToken {
		t.Fatal("access token must be new")
	}

	if live, _ := registry.IsLive(ctx, first.AccessToken); live {
		t.Fatal("previous access token must be revoked by refresh")
	}
	if live, _ := registry.IsLive(ctx, pair.AccessToken); !live {
		t.Fatal("new access token must be live")
	}
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	svc, _, registry := newTestService(t)
	ctx := context.Background()

	pair := register(t, svc, "alice@healthhub.com")
	extra, err := svc.Codec().MintAccess("alice@healthhub.com", RolePatient)
	if err != nil {
		t.Fatalf("MintAccess: %v", err)
	}
	u, _ := svc.Users().FindByEmail(ctx, "alice@healthhub.com")
	if err := registry.Record(ctx, u.ID, extra); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := svc.Logout(ctx, bearerPrefix+pair.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if live, _ := registry.IsLive(ctx, pair.AccessToken); live {
		t.Fatal("presented token must be revoked")
	}
	if live, _ := registry.IsLive(ctx, extra); !live {
		t.Fatal("other tokens must be untouched")
	}
}

func TestLogoutIsIdempotentAndSilent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pair := register(t, svc, "alice@healthhub.com")
	for i := 0; i < 3; i++ {
		if err := svc.Logout(ctx, bearerPrefix+pair.AccessToken); err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("Logout with no header: %v", err)
	}
	if err := svc.Logout(ctx, bearerPrefix+"unknown-token"); err != nil {
		t.Fatalf("Logout with unknown token: %v", err)
	}
}

func TestCurrentUserIsSanitized(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "alice@healthhub.com")

	u, err := svc.CurrentUser(context.Background(), "Alice@HealthHub.com")
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatal("password hash must not leave the service")
	}
	if u.Email != "alice@healthhub.com" {
		t.Fatalf("unexpected email %q", u.Email)
	}

	if _, err := svc.CurrentUser(context.Background(), "ghost@healthhub.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
