package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no credential row matches the lookup.
var ErrNotFound = errors.New("credential not found")

// CredentialRepository is the persistence contract for login records. Every
// mutation is a single independent update scoped to one row; the lockout
// counter is read-modify-write across round trips, so lockout under a
// concurrent attack is eventual rather than exact.
type CredentialRepository interface {
	Create(ctx context.Context, c *Credential) error
	GetByID(ctx context.Context, id uuid.UUID) (*Credential, error)
	GetByUsername(ctx context.Context, username string) (*Credential, error)

	IncrementLoginAttempts(ctx context.Context, id uuid.UUID) error
	ResetLoginAttempts(ctx context.Context, id uuid.UUID) error
	LockUntil(ctx context.Context, id uuid.UUID, until time.Time) error
	StampLastLogin(ctx context.Context, id uuid.UUID) error

	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error

	SetPasswordResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
