package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user row matches the lookup.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLoginID(ctx context.Context, loginID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetProfileByLoginID(ctx context.Context, loginID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*User, int, error)
}
