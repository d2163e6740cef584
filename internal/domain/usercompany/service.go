package usercompany

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/radbridge/radbridge/internal/domain/company"
	"github.com/radbridge/radbridge/internal/domain/user"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCompanyNotFound = errors.New("company not found")
	ErrAlreadyMember   = errors.New("user is already associated with this company")
	ErrValidation      = errors.New("validation failed")
)

type Service struct {
	affiliations Repository
	users        user.Repository
	companies    company.Repository
}

func NewService(affiliations Repository, users user.Repository, companies company.Repository) *Service {
	return &Service{affiliations: affiliations, users: users, companies: companies}
}

// Add affiliates a user with a company. Both sides must exist and the pair
// must not already be linked, active or not.
func (s *Service) Add(ctx context.Context, in CreateInput) (*Affiliation, error) {
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if _, err := s.companies.GetByID(ctx, in.CompanyID); err != nil {
		if errors.Is(err, company.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("load company: %w", err)
	}

	if _, err := s.affiliations.GetByUserAndCompany(ctx, in.UserID, in.CompanyID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check affiliation: %w", err)
	}

	a := &Affiliation{
		UserID:        in.UserID,
		CompanyID:     in.CompanyID,
		RoleInCompany: in.RoleInCompany,
		Department:    in.Department,
		IsActive:      true,
		StartDate:     time.Now(),
	}
	if a.RoleInCompany == "" {
		a.RoleInCompany = DefaultRole
	}
	if in.StartDate != nil && *in.StartDate != "" {
		t, err := time.Parse("2006-01-02", *in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start_date", ErrValidation)
		}
		a.StartDate = t
	}

	if err := s.affiliations.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create affiliation: %w", err)
	}
	return a, nil
}

// Remove deletes the affiliation row outright. Deactivate is the usual path;
// this one is for affiliations created in error.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.affiliations.Delete(ctx, id)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Affiliation, error) {
	if err := s.affiliations.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	return s.affiliations.GetByID(ctx, id)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Affiliation, error) {
	if err := s.affiliations.Activate(ctx, id); err != nil {
		return nil, err
	}
	return s.affiliations.GetByID(ctx, id)
}

func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, in UpdateInput) (*Affiliation, error) {
	if err := s.affiliations.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.affiliations.GetByID(ctx, id)
}

func (s *Service) UserCompanies(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Detail, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.affiliations.ListForUser(ctx, userID, activeOnly)
}

func (s *Service) CompanyUsers(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]*Detail, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if errors.Is(err, company.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("load company: %w", err)
	}
	return s.affiliations.ListForCompany(ctx, companyID, activeOnly)
}

func (s *Service) CompanyManagers(ctx context.Context, companyID uuid.UUID) ([]*Detail, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		if errors.Is(err, company.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("load company: %w", err)
	}
	return s.affiliations.ListManagers(ctx, companyID)
}

// UserWithCompanies returns the user header plus every affiliation detail.
func (s *Service) UserWithCompanies(ctx context.Context, userID uuid.UUID) (*UserCompanies, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	details, err := s.affiliations.ListForUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return &UserCompanies{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Companies: details,
	}, nil
}

// CompanyWithUsers returns the company header plus every affiliation detail.
func (s *Service) CompanyWithUsers(ctx context.Context, companyID uuid.UUID) (*CompanyUsers, error) {
	c, err := s.companies.GetByID(ctx, companyID)
	if errors.Is(err, company.ErrNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	details, err := s.affiliations.ListForCompany(ctx, companyID, false)
	if err != nil {
		return nil, err
	}
	return &CompanyUsers{
		CompanyID:   c.ID,
		CompanyName: c.Name,
		CompanyCode: c.Code,
		Users:       details,
	}, nil
}
