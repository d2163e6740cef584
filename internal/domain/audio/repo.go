package audio

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("recording not found")

type Repository interface {
	Create(ctx context.Context, rec *Recording) error
	GetByID(ctx context.Context, id uuid.UUID) (*Recording, error)
	GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error)
	ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*WithDetails, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error)
	ListPendingTranscription(ctx context.Context) ([]*WithDetails, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	SetTranscriptionStatus(ctx context.Context, id uuid.UUID, status string) error
	SetTranscription(ctx context.Context, id uuid.UUID, text string) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
}
