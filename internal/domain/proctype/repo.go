package proctype

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("procedure type not found")

type Repository interface {
	Create(ctx context.Context, pt *ProcedureType) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProcedureType, error)
	GetByIDWithCreator(ctx context.Context, id uuid.UUID) (*WithCreator, error)
	GetByCode(ctx context.Context, code string) (*ProcedureType, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithCreator, int, error)
	ListEmergency(ctx context.Context) ([]*WithCreator, error)
	ListMostUsed(ctx context.Context, limit int) ([]*WithCreator, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	RecordUsage(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}
