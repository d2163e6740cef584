package company

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateCode      = errors.New("company code already exists")
	ErrDuplicateTaxNumber = errors.New("tax number already exists")
)

type Service struct {
	companies Repository
}

func NewService(companies Repository) *Service {
	return &Service{companies: companies}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*Company, int, error) {
	return s.companies.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Company, error) {
	return s.companies.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Company, error) {
	return s.companies.GetByCode(ctx, code)
}

// Create rejects duplicate company codes and tax numbers before inserting.
func (s *Service) Create(ctx context.Context, in CreateInput, createdBy uuid.UUID) (*Company, error) {
	if in.Title == "" || in.Name == "" || in.Code == "" {
		return nil, fmt.Errorf("%w: company_title, company_name and company_code are required", ErrValidation)
	}

	if _, err := s.companies.GetByCode(ctx, in.Code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check company code: %w", err)
	}

	if in.TaxNumber != nil && *in.TaxNumber != "" {
		if _, err := s.companies.GetByTaxNumber(ctx, *in.TaxNumber); err == nil {
			return nil, ErrDuplicateTaxNumber
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check tax number: %w", err)
		}
	}

	c := &Company{
		Title:               in.Title,
		Name:                in.Name,
		Code:                in.Code,
		TaxNumber:           in.TaxNumber,
		TaxOffice:           in.TaxOffice,
		Email:               in.Email,
		Phone:               in.Phone,
		Website:             in.Website,
		Address:             in.Address,
		City:                in.City,
		State:               in.State,
		Country:             defaultStr(in.Country, "Türkiye"),
		PostalCode:          in.PostalCode,
		LicenseType:         in.LicenseType,
		HealthLicenseNumber: in.HealthLicenseNumber,
		ServiceLevel:        in.ServiceLevel,
		SLAAgreementURL:     in.SLAAgreementURL,
		BillingCycle:        in.BillingCycle,
		Currency:            defaultStr(in.Currency, "TRY"),
		Status:              defaultStr(in.Status, StatusPending),
		Timezone:            defaultStr(in.Timezone, "Europe/Istanbul"),
		Language:            defaultStr(in.Language, "tr"),
		CreatedBy:           &createdBy,
	}
	if !ValidStatuses[c.Status] {
		return nil, fmt.Errorf("%w: invalid status", ErrValidation)
	}
	if c.LicenseType != nil && !ValidLicenseTypes[*c.LicenseType] {
		return nil, fmt.Errorf("%w: invalid license_type", ErrValidation)
	}
	if c.ServiceLevel != nil && !ValidServiceLevels[*c.ServiceLevel] {
		return nil, fmt.Errorf("%w: invalid service_level", ErrValidation)
	}

	var err error
	if c.LicenseExpiryDate, err = parseDate(in.LicenseExpiryDate); err != nil {
		return nil, fmt.Errorf("%w: invalid license_expiry_date", ErrValidation)
	}
	if c.ContractStartDate, err = parseDate(in.ContractStartDate); err != nil {
		return nil, fmt.Errorf("%w: invalid contract_start_date", ErrValidation)
	}
	if c.ContractEndDate, err = parseDate(in.ContractEndDate); err != nil {
		return nil, fmt.Errorf("%w: invalid contract_end_date", ErrValidation)
	}

	if err := s.companies.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return s.companies.GetByID(ctx, c.ID)
}

// Update applies partial changes. A tax number change re-runs the uniqueness
// check against other live rows.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, updatedBy uuid.UUID) (*Company, error) {
	existing, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.TaxNumber != nil && *in.TaxNumber != "" &&
		(existing.TaxNumber == nil || *in.TaxNumber != *existing.TaxNumber) {
		if _, err := s.companies.GetByTaxNumber(ctx, *in.TaxNumber); err == nil {
			return nil, ErrDuplicateTaxNumber
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check tax number: %w", err)
		}
	}
	if in.Status != nil && !ValidStatuses[*in.Status] {
		return nil, fmt.Errorf("%w: invalid status", ErrValidation)
	}
	if in.LicenseType != nil && !ValidLicenseTypes[*in.LicenseType] {
		return nil, fmt.Errorf("%w: invalid license_type", ErrValidation)
	}
	if in.ServiceLevel != nil && !ValidServiceLevels[*in.ServiceLevel] {
		return nil, fmt.Errorf("%w: invalid service_level", ErrValidation)
	}

	if err := s.companies.Update(ctx, id, in, updatedBy); err != nil {
		return nil, err
	}
	return s.companies.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.companies.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*Company, error) {
	if err := s.companies.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.companies.GetByID(ctx, id)
}

func (s *Service) PermanentlyDelete(ctx context.Context, id uuid.UUID) error {
	return s.companies.HardDelete(ctx, id)
}

func (s *Service) ListByServiceLevel(ctx context.Context, level string) ([]*Company, error) {
	return s.companies.ListByServiceLevel(ctx, level)
}

func (s *Service) ExpiringLicenses(ctx context.Context, withinDays int) ([]*Company, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	return s.companies.ExpiringLicenses(ctx, withinDays)
}

func (s *Service) ExpiringContracts(ctx context.Context, withinDays int) ([]*Company, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	return s.companies.ExpiringContracts(ctx, withinDays)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.companies.Statistics(ctx)
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
