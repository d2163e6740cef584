package institution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation failed")

type Service struct {
	institutions Repository
}

func NewService(institutions Repository) *Service {
	return &Service{institutions: institutions}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*Institution, int, error) {
	return s.institutions.List(ctx, f, limit, offset)
}

func (s *Service) ListByType(ctx context.Context, instType string) ([]*Institution, error) {
	if !ValidTypes[instType] {
		return nil, fmt.Errorf("%w: invalid institution_type", ErrValidation)
	}
	return s.institutions.ListByType(ctx, instType)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Institution, error) {
	return s.institutions.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Institution, error) {
	return s.institutions.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy uuid.UUID) (*Institution, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: institution_name is required", ErrValidation)
	}
	if !ValidTypes[in.Type] {
		return nil, fmt.Errorf("%w: invalid institution_type", ErrValidation)
	}

	inst := &Institution{
		Code:          newCode(),
		Name:          in.Name,
		Type:          in.Type,
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		Website:       in.Website,
		City:          in.City,
		County:        in.County,
		Country:       in.Country,
		IsActive:      true,
		CreatedBy:     &createdBy,
	}
	if inst.Country == "" {
		inst.Country = "Türkiye"
	}

	if err := s.institutions.Create(ctx, inst); err != nil {
		return nil, fmt.Errorf("create institution: %w", err)
	}
	return s.institutions.GetByID(ctx, inst.ID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Institution, error) {
	if in.Type != nil && !ValidTypes[*in.Type] {
		return nil, fmt.Errorf("%w: invalid institution_type", ErrValidation)
	}
	if err := s.institutions.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.institutions.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.institutions.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context, id uuid.UUID) (*Statistics, error) {
	if _, err := s.institutions.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.institutions.Statistics(ctx, id)
}

// newCode derives a short unique institution code.
func newCode() string {
	return "INST-" + strings.ToUpper(uuid.NewString()[:8])
}
