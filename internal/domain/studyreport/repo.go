package studyreport

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("report not found")

type Repository interface {
	Create(ctx context.Context, rpt *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error)
	ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*WithDetails, error)
	GetLatestByStudy(ctx context.Context, studyID uuid.UUID) (*WithDetails, error)
	GetFinalByStudy(ctx context.Context, studyID uuid.UUID) (*WithDetails, error)
	ListByRadiologist(ctx context.Context, radiologistID uuid.UUID) ([]*WithDetails, error)
	List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error)
	ListDrafts(ctx context.Context, radiologistID *uuid.UUID) ([]*WithDetails, error)
	ListPendingApproval(ctx context.Context) ([]*WithDetails, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) error
	Submit(ctx context.Context, id uuid.UUID) error
	Approve(ctx context.Context, id, reviewerID uuid.UUID) error
	Reject(ctx context.Context, id, reviewerID uuid.UUID) error
	MarkFinal(ctx context.Context, id uuid.UUID) error
	Sign(ctx context.Context, id uuid.UUID, signature string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Statistics(ctx context.Context) (*Statistics, error)
	RadiologistStatistics(ctx context.Context, radiologistID uuid.UUID) (*RadiologistStatistics, error)
}
