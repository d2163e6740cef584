package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/radbridge/radbridge/internal/domain/user"
	platformauth "github.com/radbridge/radbridge/internal/platform/auth"
)

// Domain error taxonomy. Handlers match these with errors.Is and translate
// them to HTTP statuses; messages never reveal whether a username exists.
var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountLocked       = errors.New("account is locked")
	ErrAccountLockedNow    = errors.New("too many failed attempts, account locked")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrInvalidUser         = errors.New("invalid user")
)

// LoginResult carries the identity claims and profile returned by a
// successful login.
type LoginResult struct {
	Identity platformauth.Identity
	Profile  *user.User
}

// TokenPair is one freshly minted access + refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service orchestrates registration, the login lockout state machine,
// refresh-token verification, and logout. All collaborators are injected at
// construction.
type Service struct {
	creds  CredentialRepository
	users  user.Repository
	hasher platformauth.PasswordHasher
	issuer *platformauth.TokenIssuer
	now    func() time.Time
}

func NewService(creds CredentialRepository, users user.Repository,
	hasher platformauth.PasswordHasher, issuer *platformauth.TokenIssuer) *Service {
	return &Service{
		creds:  creds,
		users:  users,
		hasher: hasher,
		issuer: issuer,
		now:    time.Now,
	}
}

// Register creates a credential row and its linked profile. Username and
// email uniqueness are checked first; both collisions reject the request.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Credential, *user.User, error) {
	if err := validateRegisterInput(&in); err != nil {
		return nil, nil, err
	}

	if _, err := s.creds.GetByUsername(ctx, in.Username); err == nil {
		return nil, nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, nil, ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, err
	}

	cred := &Credential{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, nil, fmt.Errorf("create credential: %w", err)
	}

	profile := &user.User{
		LoginID:        cred.ID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		LicenseNumber:  in.LicenseNumber,
		Specialization: in.Specialization,
		HospitalName:   in.HospitalName,
		Department:     in.Department,
	}
	if in.CompanyID != nil {
		cid, err := uuid.Parse(*in.CompanyID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid company_id", ErrValidation)
		}
		profile.CompanyID = &cid
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}

	return cred, profile, nil
}

// Login runs the credential state machine. The lockout check happens before
// password verification, so a correct password during an open lockout window
// still fails with ErrAccountLocked.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	cred, err := s.creds.GetByUsername(ctx, in.Username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if cred.Locked(s.now()) {
		return nil, ErrAccountLocked
	}

	if !cred.IsActive {
		return nil, ErrAccountDeactivated
	}

	if !s.hasher.Verify(in.Password, cred.PasswordHash) {
		if err := s.creds.IncrementLoginAttempts(ctx, cred.ID); err != nil {
			return nil, fmt.Errorf("increment attempts: %w", err)
		}
		if cred.LoginAttemptCount+1 >= MaxLoginAttempts {
			if err := s.creds.LockUntil(ctx, cred.ID, s.now().Add(LockoutDuration)); err != nil {
				return nil, fmt.Errorf("lock account: %w", err)
			}
			return nil, ErrAccountLockedNow
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.creds.ResetLoginAttempts(ctx, cred.ID); err != nil {
		return nil, fmt.Errorf("reset attempts: %w", err)
	}
	if err := s.creds.StampLastLogin(ctx, cred.ID); err != nil {
		return nil, fmt.Errorf("stamp last login: %w", err)
	}

	profile, err := s.users.GetByLoginID(ctx, cred.ID)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return &LoginResult{
		Identity: platformauth.Identity{
			UserID:   cred.ID.String(),
			Username: cred.Username,
			Role:     cred.Role,
		},
		Profile: profile,
	}, nil
}

// IssueTokens mints an access + refresh pair for the identity and persists
// the refresh token, overwriting any prior value. Exactly one refresh token
// is valid per credential at a time.
func (s *Service) IssueTokens(ctx context.Context, id platformauth.Identity) (*TokenPair, error) {
	access, err := s.issuer.SignAccess(id)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.SignRefresh(id)
	if err != nil {
		return nil, err
	}

	credID, err := uuid.Parse(id.UserID)
	if err != nil {
		return nil, ErrInvalidUser
	}
	if err := s.creds.UpdateRefreshToken(ctx, credID, &refresh); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a presented refresh token and mints a new access token.
// The stored refresh token is not rotated here; only login and logout mutate
// it.
func (s *Service) Refresh(ctx context.Context, rawToken string) (string, error) {
	claims, err := s.issuer.VerifyRefresh(rawToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	credID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	cred, err := s.creds.GetByID(ctx, credID)
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if cred.RefreshToken == nil || *cred.RefreshToken != rawToken {
		return "", ErrInvalidRefreshToken
	}

	access, err := s.issuer.SignAccess(claims.Identity())
	if err != nil {
		return "", err
	}
	return access, nil
}

// Logout clears the stored refresh token. Calling it twice is not an error.
func (s *Service) Logout(ctx context.Context, credID uuid.UUID) error {
	return s.creds.UpdateRefreshToken(ctx, credID, nil)
}

// VerifyUser loads the credential and profile for an authenticated caller.
func (s *Service) VerifyUser(ctx context.Context, credID uuid.UUID) (*user.Profile, error) {
	cred, err := s.creds.GetByID(ctx, credID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if !cred.IsActive {
		return nil, ErrInvalidUser
	}

	profile, err := s.users.GetProfileByLoginID(ctx, cred.ID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidUser
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func validateRegisterInput(in *RegisterInput) error {
	if len(in.Username) < 3 || len(in.Username) > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", ErrValidation)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if in.FirstName == "" || len(in.FirstName) > 100 {
		return fmt.Errorf("%w: first_name is required", ErrValidation)
	}
	if in.LastName == "" || len(in.LastName) > 100 {
		return fmt.Errorf("%w: last_name is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if in.Role == "" {
		in.Role = RoleUser
	}
	if !ValidRoles[in.Role] {
		return fmt.Errorf("%w: invalid role", ErrValidation)
	}
	return nil
}
