package institution

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("institution not found")

type Repository interface {
	Create(ctx context.Context, inst *Institution) error
	GetByID(ctx context.Context, id uuid.UUID) (*Institution, error)
	GetByCode(ctx context.Context, code string) (*Institution, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*Institution, int, error)
	ListByType(ctx context.Context, instType string) ([]*Institution, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context, id uuid.UUID) (*Statistics, error)
}
