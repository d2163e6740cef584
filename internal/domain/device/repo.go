package device

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("device not found")

type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*Device, error)
	GetByIDWithInstitution(ctx context.Context, id uuid.UUID) (*WithInstitution, error)
	GetByCode(ctx context.Context, code string) (*Device, error)
	GetByAETitle(ctx context.Context, aeTitle string) (*Device, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithInstitution, int, error)
	ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]*WithInstitution, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	// SetFlag flips one of is_active / is_online.
	SetFlag(ctx context.Context, id uuid.UUID, column string, value bool) error
	MaintenanceDue(ctx context.Context, daysAhead int) ([]*WithInstitution, error)
	MaintenanceOverdue(ctx context.Context) ([]*WithInstitution, error)
	RecentlyAdded(ctx context.Context, limit int) ([]*WithInstitution, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}
