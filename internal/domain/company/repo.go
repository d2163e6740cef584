package company

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("company not found")

// Repository is the company persistence contract. All reads exclude soft
// deleted rows; Restore and HardDelete are the only operations that touch
// them.
type Repository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByCode(ctx context.Context, code string) (*Company, error)
	GetByTaxNumber(ctx context.Context, taxNumber string) (*Company, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*Company, int, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	ListByServiceLevel(ctx context.Context, serviceLevel string) ([]*Company, error)
	ExpiringLicenses(ctx context.Context, withinDays int) ([]*Company, error)
	ExpiringContracts(ctx context.Context, withinDays int) ([]*Company, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
