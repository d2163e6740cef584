package studyreport

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/radbridge/radbridge/internal/domain/study"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrStudyNotFound = errors.New("study not found")
	ErrInvalidState  = errors.New("invalid report state for operation")
	ErrAlreadySigned = errors.New("report already signed")
)

type Service struct {
	reports Repository
	studies study.Repository
}

func NewService(reports Repository, studies study.Repository) *Service {
	return &Service{reports: reports, studies: studies}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error) {
	return s.reports.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return s.reports.GetByIDWithDetails(ctx, id)
}

func (s *Service) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*WithDetails, error) {
	return s.reports.ListByStudy(ctx, studyID)
}

func (s *Service) LatestForStudy(ctx context.Context, studyID uuid.UUID) (*WithDetails, error) {
	return s.reports.GetLatestByStudy(ctx, studyID)
}

func (s *Service) FinalForStudy(ctx context.Context, studyID uuid.UUID) (*WithDetails, error) {
	return s.reports.GetFinalByStudy(ctx, studyID)
}

func (s *Service) ListByRadiologist(ctx context.Context, radiologistID uuid.UUID) ([]*WithDetails, error) {
	return s.reports.ListByRadiologist(ctx, radiologistID)
}

func (s *Service) Drafts(ctx context.Context, radiologistID *uuid.UUID) ([]*WithDetails, error) {
	return s.reports.ListDrafts(ctx, radiologistID)
}

func (s *Service) PendingApproval(ctx context.Context) ([]*WithDetails, error) {
	return s.reports.ListPendingApproval(ctx)
}

// Create opens a new draft report for a study. The repository assigns the
// next version number within the study.
func (s *Service) Create(ctx context.Context, in CreateInput, radiologistID uuid.UUID) (*Report, error) {
	if in.StudyID == uuid.Nil || in.ReportText == "" {
		return nil, fmt.Errorf("%w: study_id and report_text are required", ErrValidation)
	}
	if in.Type == "" {
		in.Type = TypePreliminary
	}
	if !ValidTypes[in.Type] {
		return nil, fmt.Errorf("%w: invalid report_type", ErrValidation)
	}

	if _, err := s.studies.GetByID(ctx, in.StudyID); err != nil {
		if errors.Is(err, study.ErrNotFound) {
			return nil, ErrStudyNotFound
		}
		return nil, fmt.Errorf("check study: %w", err)
	}

	rpt := &Report{
		StudyID:         in.StudyID,
		Type:            in.Type,
		Status:          StatusDraft,
		ReportText:      in.ReportText,
		Findings:        in.Findings,
		Impression:      in.Impression,
		Recommendations: in.Recommendations,
		RadiologistID:   radiologistID,
		Notes:           in.Notes,
	}
	if err := s.reports.Create(ctx, rpt); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return s.reports.GetByID(ctx, rpt.ID)
}

// Update edits report content. Only drafts and rejected reports are editable;
// anything past submission is immutable except through the review operations.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Report, error) {
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.Status != StatusDraft && rpt.Status != StatusRejected {
		return nil, fmt.Errorf("%w: cannot edit a %s report", ErrInvalidState, rpt.Status)
	}
	if in.Type != nil && !ValidTypes[*in.Type] {
		return nil, fmt.Errorf("%w: invalid report_type", ErrValidation)
	}
	if err := s.reports.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

// Submit hands a draft (or a rejected report after rework) to review.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Report, error) {
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.Status != StatusDraft && rpt.Status != StatusRejected {
		return nil, fmt.Errorf("%w: cannot submit a %s report", ErrInvalidState, rpt.Status)
	}
	if err := s.reports.Submit(ctx, id); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id, reviewerID uuid.UUID) (*Report, error) {
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.Status != StatusSubmitted {
		return nil, fmt.Errorf("%w: only submitted reports can be approved", ErrInvalidState)
	}
	if err := s.reports.Approve(ctx, id, reviewerID); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

func (s *Service) Reject(ctx context.Context, id, reviewerID uuid.UUID) (*Report, error) {
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.Status != StatusSubmitted {
		return nil, fmt.Errorf("%w: only submitted reports can be rejected", ErrInvalidState)
	}
	if err := s.reports.Reject(ctx, id, reviewerID); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

// MarkFinal flags an approved report as the study's final word.
func (s *Service) MarkFinal(ctx context.Context, id uuid.UUID) (*Report, error) {
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.Status != StatusApproved {
		return nil, fmt.Errorf("%w: only approved reports can be marked final", ErrInvalidState)
	}
	if err := s.reports.MarkFinal(ctx, id); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

// Sign attaches a digital signature to an approved report. Signing is a
// one-way operation.
func (s *Service) Sign(ctx context.Context, id uuid.UUID, signature string) (*Report, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: signature is required", ErrValidation)
	}
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rpt.IsSigned {
		return nil, ErrAlreadySigned
	}
	if rpt.Status != StatusApproved {
		return nil, fmt.Errorf("%w: only approved reports can be signed", ErrInvalidState)
	}
	if err := s.reports.Sign(ctx, id, signature); err != nil {
		return nil, err
	}
	return s.reports.GetByID(ctx, id)
}

// Delete removes a report. Signed reports are kept for the record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rpt, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rpt.IsSigned {
		return fmt.Errorf("%w: signed reports cannot be deleted", ErrInvalidState)
	}
	return s.reports.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.reports.Statistics(ctx)
}

func (s *Service) RadiologistStatistics(ctx context.Context, radiologistID uuid.UUID) (*RadiologistStatistics, error) {
	return s.reports.RadiologistStatistics(ctx, radiologistID)
}
