package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateUID      = errors.New("study instance uid already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	studies Repository
}

func NewService(studies Repository) *Service {
	return &Service{studies: studies}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error) {
	return s.studies.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return s.studies.GetByIDWithDetails(ctx, id)
}

func (s *Service) GetByStudyInstanceUID(ctx context.Context, uid string) (*Study, error) {
	return s.studies.GetByStudyInstanceUID(ctx, uid)
}

// PatientHistory lists every study for one patient, newest first.
func (s *Service) PatientHistory(ctx context.Context, patientID string) ([]*WithDetails, error) {
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	return s.studies.ListByPatient(ctx, patientID)
}

func (s *Service) Worklist(ctx context.Context, radiologistID uuid.UUID) ([]*WithDetails, error) {
	return s.studies.ListByRadiologist(ctx, radiologistID)
}

func (s *Service) UrgentOpen(ctx context.Context) ([]*WithDetails, error) {
	return s.studies.ListUrgentOpen(ctx)
}

// Create registers a new study. The study instance UID is the DICOM-wide
// identity; a second arrival of the same UID is rejected.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Study, error) {
	if in.StudyInstanceUID == "" || in.PatientID == "" || in.PatientName == "" ||
		in.StudyDate == "" || in.Modality == "" {
		return nil, fmt.Errorf("%w: study_instance_uid, patient_id, patient_name, study_date and modality are required", ErrValidation)
	}
	if in.Priority != "" && !ValidPriorities[in.Priority] {
		return nil, fmt.Errorf("%w: invalid priority", ErrValidation)
	}

	if _, err := s.studies.GetByStudyInstanceUID(ctx, in.StudyInstanceUID); err == nil {
		return nil, ErrDuplicateUID
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check study uid: %w", err)
	}

	studyDate, err := time.Parse("2006-01-02", in.StudyDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid study_date", ErrValidation)
	}

	st := &Study{
		StudyInstanceUID:    in.StudyInstanceUID,
		AccessionNumber:     in.AccessionNumber,
		PatientID:           in.PatientID,
		PatientName:         in.PatientName,
		PatientSex:          in.PatientSex,
		StudyDate:           studyDate,
		StudyTime:           in.StudyTime,
		StudyDescription:    in.StudyDescription,
		Modality:            in.Modality,
		InstitutionID:       in.InstitutionID,
		DeviceID:            in.DeviceID,
		ReferringPhysician:  in.ReferringPhysician,
		PerformingPhysician: in.PerformingPhysician,
		Status:              StatusPending,
		Priority:            in.Priority,
	}
	if st.Priority == "" {
		st.Priority = PriorityRoutine
	}
	if in.PatientBirthDate != nil && *in.PatientBirthDate != "" {
		bd, err := time.Parse("2006-01-02", *in.PatientBirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid patient_birth_date", ErrValidation)
		}
		st.PatientBirthDate = &bd
	}
	if in.NumImages != nil {
		st.NumImages = *in.NumImages
	}
	if in.NumSeries != nil {
		st.NumSeries = *in.NumSeries
	}
	if in.IsUrgent != nil {
		st.IsUrgent = *in.IsUrgent
	}

	if err := s.studies.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create study: %w", err)
	}
	return s.studies.GetByID(ctx, st.ID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Study, error) {
	if in.Priority != nil && !ValidPriorities[*in.Priority] {
		return nil, fmt.Errorf("%w: invalid priority", ErrValidation)
	}
	if err := s.studies.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.studies.GetByID(ctx, id)
}

// Assign hands the study to a radiologist. Only pending or already assigned
// studies can be (re)assigned.
func (s *Service) Assign(ctx context.Context, id, radiologistID uuid.UUID) (*Study, error) {
	st, err := s.studies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Status != StatusPending && st.Status != StatusAssigned {
		return nil, fmt.Errorf("%w: cannot assign study in status %s", ErrInvalidTransition, st.Status)
	}
	if err := s.studies.Assign(ctx, id, radiologistID); err != nil {
		return nil, err
	}
	return s.studies.GetByID(ctx, id)
}

// SetStatus applies a validated status transition.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Study, error) {
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("%w: invalid status", ErrValidation)
	}
	st, err := s.studies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(st.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st.Status, status)
	}
	if err := s.studies.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.studies.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.studies.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.studies.Statistics(ctx)
}
