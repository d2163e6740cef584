package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radbridge/radbridge/internal/domain/user"
	platformauth "github.com/radbridge/radbridge/internal/platform/auth"
)

// -- Mock credential repository --

type mockCredRepo struct {
	store map[uuid.UUID]*Credential
}

func newMockCredRepo() *mockCredRepo {
	return &mockCredRepo{store: make(map[uuid.UUID]*Credential)}
}

func (m *mockCredRepo) Create(_ context.Context, c *Credential) error {
	c.ID = uuid.New()
	c.IsActive = true
	c.LoginAttemptCount = 0
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *mockCredRepo) GetByID(_ context.Context, id uuid.UUID) (*Credential, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCredRepo) GetByUsername(_ context.Context, username string) (*Credential, error) {
	for _, c := range m.store {
		if c.Username == username {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockCredRepo) IncrementLoginAttempts(_ context.Context, id uuid.UUID) error {
	m.store[id].LoginAttemptCount++
	return nil
}

func (m *mockCredRepo) ResetLoginAttempts(_ context.Context, id uuid.UUID) error {
	m.store[id].LoginAttemptCount = 0
	m.store[id].LockedUntil = nil
	return nil
}

func (m *mockCredRepo) LockUntil(_ context.Context, id uuid.UUID, until time.Time) error {
	u := until
	m.store[id].LockedUntil = &u
	return nil
}

func (m *mockCredRepo) StampLastLogin(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	m.store[id].LastLoginAt = &now
	return nil
}

func (m *mockCredRepo) UpdateRefreshToken(_ context.Context, id uuid.UUID, token *string) error {
	c, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	c.RefreshToken = token
	return nil
}

func (m *mockCredRepo) SetPasswordResetToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	m.store[id].PasswordResetToken = &token
	m.store[id].PasswordResetExpiresAt = &expiresAt
	return nil
}

func (m *mockCredRepo) ResetPassword(_ context.Context, id uuid.UUID, hash string) error {
	c := m.store[id]
	c.PasswordHash = hash
	c.PasswordResetToken = nil
	c.PasswordResetExpiresAt = nil
	return nil
}

// -- Mock user repository --

type mockUserRepo struct {
	store map[uuid.UUID]*user.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{store: make(map[uuid.UUID]*user.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	u.ID = uuid.New()
	m.store[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByLoginID(_ context.Context, loginID uuid.UUID) (*user.User, error) {
	for _, u := range m.store {
		if u.LoginID == loginID {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.store {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetProfileByLoginID(ctx context.Context, loginID uuid.UUID) (*user.Profile, error) {
	u, err := m.GetByLoginID(ctx, loginID)
	if err != nil {
		return nil, err
	}
	return &user.Profile{User: *u}, nil
}

func (m *mockUserRepo) Update(_ context.Context, id uuid.UUID, _ user.UpdateInput) error {
	if _, ok := m.store[id]; !ok {
		return user.ErrNotFound
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]*user.User, int, error) {
	var r []*user.User
	for _, u := range m.store {
		r = append(r, u)
	}
	return r, len(r), nil
}

func (m *mockUserRepo) ListByCompany(_ context.Context, _ uuid.UUID, _, _ int) ([]*user.User, int, error) {
	return nil, 0, nil
}

// -- Fixtures --

func newTestService() (*Service, *mockCredRepo) {
	creds := newMockCredRepo()
	issuer := platformauth.NewTokenIssuer("access-secret", "refresh-secret")
	svc := NewService(creds, newMockUserRepo(), platformauth.NewPasswordHasher(), issuer)
	return svc, creds
}

func registerAlice(t *testing.T, svc *Service) *Credential {
	t.Helper()
	cred, _, err := svc.Register(context.Background(), RegisterInput{
		Username:  "alice",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Stone",
		Email:     "alice@example.com",
		Role:      RoleRadiologist,
	})
	require.NoError(t, err)
	return cred
}

// -- Registration --

func TestRegister_ThenLoginSucceeds(t *testing.T) {
	svc, _ := newTestService()
	cred := registerAlice(t, svc)

	assert.True(t, cred.IsActive)
	assert.Equal(t, 0, cred.LoginAttemptCount)
	assert.Equal(t, RoleRadiologist, cred.Role)

	result, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Identity.Username)
	assert.Equal(t, cred.ID.String(), result.Identity.UserID)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "alice@example.com", result.Profile.Email)
}

func TestRegister_DefaultRole(t *testing.T) {
	svc, _ := newTestService()
	cred, _, err := svc.Register(context.Background(), RegisterInput{
		Username:  "bob",
		Password:  "secret1",
		FirstName: "Bob",
		LastName:  "Reed",
		Email:     "bob@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, cred.Role)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService()
	registerAlice(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username:  "alice",
		Password:  "secret2",
		FirstName: "Other",
		LastName:  "Alice",
		Email:     "other@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	registerAlice(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username:  "alice2",
		Password:  "secret2",
		FirstName: "Other",
		LastName:  "Alice",
		Email:     "alice@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	cases := []RegisterInput{
		{Username: "ab", Password: "secret1", FirstName: "A", LastName: "B", Email: "a@b.com"},
		{Username: "alice", Password: "short", FirstName: "A", LastName: "B", Email: "a@b.com"},
		{Username: "alice", Password: "secret1", FirstName: "", LastName: "B", Email: "a@b.com"},
		{Username: "alice", Password: "secret1", FirstName: "A", LastName: "B", Email: "not-an-email"},
		{Username: "alice", Password: "secret1", FirstName: "A", LastName: "B", Email: "a@b.com", Role: "superuser"},
	}
	for i, in := range cases {
		_, _, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation, "case %d", i)
	}
}

// -- Login lockout state machine --

func TestLogin_UnknownUsername(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WrongPassword_IncrementsCounter(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, creds.store[cred.ID].LoginAttemptCount)
}

func TestLogin_FifthFailureLocks(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)
	ctx := context.Background()

	for i := 0; i < MaxLoginAttempts-1; i++ {
		_, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	_, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAccountLockedNow)
	require.NotNil(t, creds.store[cred.ID].LockedUntil)

	// Correct password during the lockout window still fails, and does not
	// touch the attempt counter.
	before := creds.store[cred.ID].LoginAttemptCount
	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.Equal(t, before, creds.store[cred.ID].LoginAttemptCount)
}

func TestLogin_LockoutExpires(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	creds.store[cred.ID].LockedUntil = &past
	creds.store[cred.ID].LoginAttemptCount = MaxLoginAttempts

	result, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Identity.Username)
	assert.Equal(t, 0, creds.store[cred.ID].LoginAttemptCount)
	assert.Nil(t, creds.store[cred.ID].LockedUntil)
}

func TestLogin_SuccessResetsCounterAndStampsLastLogin(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)
	ctx := context.Background()

	_, _ = svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
	_, _ = svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"})
	require.Equal(t, 2, creds.store[cred.ID].LoginAttemptCount)

	_, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, 0, creds.store[cred.ID].LoginAttemptCount)
	assert.NotNil(t, creds.store[cred.ID].LastLoginAt)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)
	creds.store[cred.ID].IsActive = false

	_, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

// -- Refresh / logout --

func TestRefresh_ValidToken(t *testing.T) {
	svc, _ := newTestService()
	registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	tokens, err := svc.IssueTokens(ctx, result.Identity)
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestRefresh_DoesNotRotateStoredToken(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	tokens, err := svc.IssueTokens(ctx, result.Identity)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	require.NotNil(t, creds.store[cred.ID].RefreshToken)
	assert.Equal(t, tokens.RefreshToken, *creds.store[cred.ID].RefreshToken)
}

func TestRefresh_MismatchedToken(t *testing.T) {
	svc, _ := newTestService()
	registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	// First pair is overwritten by the second; the stale refresh token must
	// be rejected even though its signature is still valid.
	stale, err := svc.IssueTokens(ctx, result.Identity)
	require.NoError(t, err)
	_, err = svc.IssueTokens(ctx, result.Identity)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, stale.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_Garbage(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	svc, _ := newTestService()
	cred := registerAlice(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	tokens, err := svc.IssueTokens(ctx, result.Identity)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, cred.ID))

	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// Logout is idempotent.
	assert.NoError(t, svc.Logout(ctx, cred.ID))
}

// -- VerifyUser --

func TestVerifyUser(t *testing.T) {
	svc, creds := newTestService()
	cred := registerAlice(t, svc)
	ctx := context.Background()

	profile, err := svc.VerifyUser(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)

	creds.store[cred.ID].IsActive = false
	_, err = svc.VerifyUser(ctx, cred.ID)
	assert.ErrorIs(t, err, ErrInvalidUser)

	_, err = svc.VerifyUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidUser)
}
