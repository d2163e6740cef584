package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateCode = errors.New("template code already exists")
)

type Service struct {
	templates Repository
}

func NewService(templates Repository) *Service {
	return &Service{templates: templates}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*WithCreator, int, error) {
	return s.templates.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	return s.templates.GetByIDWithCreator(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Template, error) {
	return s.templates.GetByCode(ctx, code)
}

func (s *Service) Defaults(ctx context.Context) ([]*WithCreator, error) {
	return s.templates.ListDefaults(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy uuid.UUID) (*Template, error) {
	if in.Name == "" || in.Code == "" || in.Modality == "" || in.Content == "" {
		return nil, fmt.Errorf("%w: template_name, template_code, modality and content are required", ErrValidation)
	}
	if in.Category == "" {
		in.Category = CategoryNormal
	}
	if !ValidCategories[in.Category] {
		return nil, fmt.Errorf("%w: invalid category", ErrValidation)
	}

	if _, err := s.templates.GetByCode(ctx, in.Code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check template code: %w", err)
	}

	t := &Template{
		Name:        in.Name,
		Code:        in.Code,
		Category:    in.Category,
		Modality:    in.Modality,
		BodyPart:    in.BodyPart,
		Content:     in.Content,
		Description: in.Description,
		Language:    in.Language,
		Tags:        in.Tags,
		IsActive:    true,
		CreatedBy:   &createdBy,
	}
	if t.Language == "" {
		t.Language = DefaultLanguage
	}
	if in.IsDefault != nil {
		t.IsDefault = *in.IsDefault
	}

	if err := s.templates.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return s.templates.GetByID(ctx, t.ID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Template, error) {
	if in.Category != nil && !ValidCategories[*in.Category] {
		return nil, fmt.Errorf("%w: invalid category", ErrValidation)
	}
	if in.Code != nil {
		current, err := s.templates.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if *in.Code != current.Code {
			if _, err := s.templates.GetByCode(ctx, *in.Code); err == nil {
				return nil, ErrDuplicateCode
			} else if !errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("check template code: %w", err)
			}
		}
	}
	if err := s.templates.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.templates.GetByID(ctx, id)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) (*Template, error) {
	if err := s.templates.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.templates.GetByID(ctx, id)
}

// SetDefault promotes the template to the default for its modality and
// category, demoting any previous default.
func (s *Service) SetDefault(ctx context.Context, id uuid.UUID) (*Template, error) {
	if err := s.templates.SetDefault(ctx, id); err != nil {
		return nil, err
	}
	return s.templates.GetByID(ctx, id)
}

func (s *Service) UnsetDefault(ctx context.Context, id uuid.UUID) (*Template, error) {
	if err := s.templates.UnsetDefault(ctx, id); err != nil {
		return nil, err
	}
	return s.templates.GetByID(ctx, id)
}

// RecordUsage bumps the usage counter when a radiologist pulls the template
// into a report.
func (s *Service) RecordUsage(ctx context.Context, id uuid.UUID) (*Template, error) {
	if err := s.templates.RecordUsage(ctx, id); err != nil {
		return nil, err
	}
	return s.templates.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.templates.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.templates.Statistics(ctx)
}
