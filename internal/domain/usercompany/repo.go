package usercompany

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("affiliation not found")

type Repository interface {
	Create(ctx context.Context, a *Affiliation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Affiliation, error)
	GetByUserAndCompany(ctx context.Context, userID, companyID uuid.UUID) (*Affiliation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Deactivate stamps end_date with the current date; Activate clears it.
	Deactivate(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	ListForUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Detail, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]*Detail, error)
	ListManagers(ctx context.Context, companyID uuid.UUID) ([]*Detail, error)
}
