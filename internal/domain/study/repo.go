package study

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("study not found")

type Repository interface {
	Create(ctx context.Context, s *Study) error
	GetByID(ctx context.Context, id uuid.UUID) (*Study, error)
	GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error)
	GetByStudyInstanceUID(ctx context.Context, uid string) (*Study, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error)
	ListByPatient(ctx context.Context, patientID string) ([]*WithDetails, error)
	ListByRadiologist(ctx context.Context, radiologistID uuid.UUID) ([]*WithDetails, error)
	ListUrgentOpen(ctx context.Context) ([]*WithDetails, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	Assign(ctx context.Context, id, radiologistID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}
