package proctype

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateCode = errors.New("procedure code already exists")
)

type Service struct {
	procs Repository
}

func NewService(procs Repository) *Service {
	return &Service{procs: procs}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*WithCreator, int, error) {
	return s.procs.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	return s.procs.GetByIDWithCreator(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*ProcedureType, error) {
	return s.procs.GetByCode(ctx, code)
}

func (s *Service) Emergency(ctx context.Context) ([]*WithCreator, error) {
	return s.procs.ListEmergency(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy uuid.UUID) (*ProcedureType, error) {
	if in.Code == "" || in.Name == "" || in.Modality == "" {
		return nil, fmt.Errorf("%w: proc_code, name and modality are required", ErrValidation)
	}
	if in.Category == "" {
		in.Category = CategoryDiagnostic
	}
	if !ValidCategories[in.Category] {
		return nil, fmt.Errorf("%w: invalid category", ErrValidation)
	}
	if in.RadiationDose != nil && !ValidDoses[*in.RadiationDose] {
		return nil, fmt.Errorf("%w: invalid radiation_dose", ErrValidation)
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	if _, err := s.procs.GetByCode(ctx, in.Code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check procedure code: %w", err)
	}

	pt := &ProcedureType{
		Code:                    in.Code,
		Name:                    in.Name,
		NameEN:                  in.NameEN,
		Description:             in.Description,
		Modality:                in.Modality,
		BodyPart:                in.BodyPart,
		Category:                in.Category,
		PreparationInstructions: in.PreparationInstructions,
		TypicalDuration:         DefaultDurationMinutes,
		RadiationDose:           in.RadiationDose,
		Price:                   in.Price,
		CPTCode:                 in.CPTCode,
		ICDCodes:                in.ICDCodes,
		Tags:                    in.Tags,
		IsActive:                true,
		CreatedBy:               &createdBy,
	}
	if in.IsEmergency != nil {
		pt.IsEmergency = *in.IsEmergency
	}
	if in.IsContrast != nil {
		pt.IsContrast = *in.IsContrast
	}
	if in.RequiresPreparation != nil {
		pt.RequiresPreparation = *in.RequiresPreparation
	}
	if in.TypicalDuration != nil {
		if *in.TypicalDuration <= 0 {
			return nil, fmt.Errorf("%w: typical_duration must be positive", ErrValidation)
		}
		pt.TypicalDuration = *in.TypicalDuration
	}

	if err := s.procs.Create(ctx, pt); err != nil {
		return nil, fmt.Errorf("create procedure type: %w", err)
	}
	return s.procs.GetByID(ctx, pt.ID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*ProcedureType, error) {
	if in.Category != nil && !ValidCategories[*in.Category] {
		return nil, fmt.Errorf("%w: invalid category", ErrValidation)
	}
	if in.RadiationDose != nil && !ValidDoses[*in.RadiationDose] {
		return nil, fmt.Errorf("%w: invalid radiation_dose", ErrValidation)
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if in.TypicalDuration != nil && *in.TypicalDuration <= 0 {
		return nil, fmt.Errorf("%w: typical_duration must be positive", ErrValidation)
	}
	if in.Code != nil {
		current, err := s.procs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if *in.Code != current.Code {
			if _, err := s.procs.GetByCode(ctx, *in.Code); err == nil {
				return nil, ErrDuplicateCode
			} else if !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("check procedure code: %w", err)
			}
		}
	}
	if err := s.procs.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.procs.GetByID(ctx, id)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*ProcedureType, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*ProcedureType, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) (*ProcedureType, error) {
	if err := s.procs.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.procs.GetByID(ctx, id)
}

// RecordUsage bumps the usage counter when a study is booked against the
// procedure.
func (s *Service) RecordUsage(ctx context.Context, id uuid.UUID) (*ProcedureType, error) {
	if err := s.procs.RecordUsage(ctx, id); err != nil {
		return nil, err
	}
	return s.procs.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.procs.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.procs.Statistics(ctx)
}
