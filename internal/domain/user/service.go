package user

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// GetProfile returns the joined profile for the credential that owns it.
func (s *Service) GetProfile(ctx context.Context, loginID uuid.UUID) (*Profile, error) {
	return s.users.GetProfileByLoginID(ctx, loginID)
}

// UpdateProfile applies the provided fields to the profile owned by loginID.
func (s *Service) UpdateProfile(ctx context.Context, loginID uuid.UUID, in UpdateInput) (*Profile, error) {
	u, err := s.users.GetByLoginID(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u.ID, in); err != nil {
		return nil, err
	}
	return s.users.GetProfileByLoginID(ctx, loginID)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) ListCompanyUsers(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.ListByCompany(ctx, companyID, limit, offset)
}
