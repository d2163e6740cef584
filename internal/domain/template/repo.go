package template

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("template not found")

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	GetByIDWithCreator(ctx context.Context, id uuid.UUID) (*WithCreator, error)
	GetByCode(ctx context.Context, code string) (*Template, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithCreator, int, error)
	ListDefaults(ctx context.Context) ([]*WithCreator, error)
	ListMostUsed(ctx context.Context, limit int) ([]*WithCreator, error)
	ListRecent(ctx context.Context, limit int) ([]*WithCreator, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetDefault(ctx context.Context, id uuid.UUID) error
	UnsetDefault(ctx context.Context, id uuid.UUID) error
	RecordUsage(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}
