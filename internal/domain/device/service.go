package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateCode    = errors.New("device code already exists")
	ErrDuplicateAETitle = errors.New("ae title already exists")
)

type Service struct {
	devices Repository
}

func NewService(devices Repository) *Service {
	return &Service{devices: devices}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*WithInstitution, int, error) {
	return s.devices.List(ctx, f, limit, offset)
}

func (s *Service) ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]*WithInstitution, error) {
	return s.devices.ListByInstitution(ctx, institutionID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithInstitution, error) {
	return s.devices.GetByIDWithInstitution(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Device, error) {
	return s.devices.GetByCode(ctx, code)
}

// Create enforces device code and AE title uniqueness. The AE title is what
// the PACS uses to address the device, so collisions would misroute studies.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Device, error) {
	if in.Code == "" || in.Name == "" || in.Modality == "" {
		return nil, fmt.Errorf("%w: device_code, device_name and modality are required", ErrValidation)
	}

	if _, err := s.devices.GetByCode(ctx, in.Code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check device code: %w", err)
	}
	if in.AETitle != nil && *in.AETitle != "" {
		if _, err := s.devices.GetByAETitle(ctx, *in.AETitle); err == nil {
			return nil, ErrDuplicateAETitle
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check ae title: %w", err)
		}
	}

	d := &Device{
		Code:          in.Code,
		Name:          in.Name,
		Modality:      in.Modality,
		DeviceType:    in.DeviceType,
		Manufacturer:  in.Manufacturer,
		Model:         in.Model,
		SerialNumber:  in.SerialNumber,
		InstitutionID: in.InstitutionID,
		AETitle:       in.AETitle,
		IPAddress:     in.IPAddress,
		Port:          DefaultDICOMPort,
		Location:      in.Location,
		Notes:         in.Notes,
		IsActive:      true,
	}
	if in.Port != nil {
		d.Port = *in.Port
	}
	if in.Urgent != nil {
		d.Urgent = *in.Urgent
	}
	if in.InstallationDate != nil && *in.InstallationDate != "" {
		t, err := parseDate(*in.InstallationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid installation_date", ErrValidation)
		}
		d.InstallationDate = t
	}

	if err := s.devices.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	return s.devices.GetByID(ctx, d.ID)
}

// Update re-checks code and AE title uniqueness when either changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Device, error) {
	existing, err := s.devices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Code != nil && *in.Code != existing.Code {
		if _, err := s.devices.GetByCode(ctx, *in.Code); err == nil {
			return nil, ErrDuplicateCode
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check device code: %w", err)
		}
	}
	if in.AETitle != nil && *in.AETitle != "" &&
		(existing.AETitle == nil || *in.AETitle != *existing.AETitle) {
		if _, err := s.devices.GetByAETitle(ctx, *in.AETitle); err == nil {
			return nil, ErrDuplicateAETitle
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("check ae title: %w", err)
		}
	}

	if err := s.devices.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.devices.GetByID(ctx, id)
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Device, error) {
	return s.setFlag(ctx, id, "is_active", true)
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Device, error) {
	return s.setFlag(ctx, id, "is_active", false)
}

func (s *Service) SetOnline(ctx context.Context, id uuid.UUID) (*Device, error) {
	return s.setFlag(ctx, id, "is_online", true)
}

func (s *Service) SetOffline(ctx context.Context, id uuid.UUID) (*Device, error) {
	return s.setFlag(ctx, id, "is_online", false)
}

func (s *Service) setFlag(ctx context.Context, id uuid.UUID, column string, value bool) (*Device, error) {
	if err := s.devices.SetFlag(ctx, id, column, value); err != nil {
		return nil, err
	}
	return s.devices.GetByID(ctx, id)
}

func (s *Service) MaintenanceDue(ctx context.Context, daysAhead int) ([]*WithInstitution, error) {
	if daysAhead <= 0 {
		daysAhead = 30
	}
	return s.devices.MaintenanceDue(ctx, daysAhead)
}

func (s *Service) MaintenanceOverdue(ctx context.Context) ([]*WithInstitution, error) {
	return s.devices.MaintenanceOverdue(ctx)
}

func (s *Service) RecentlyAdded(ctx context.Context, limit int) ([]*WithInstitution, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.devices.RecentlyAdded(ctx, limit)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.devices.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*Device, error) {
	if err := s.devices.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.devices.GetByID(ctx, id)
}

func (s *Service) PermanentlyDelete(ctx context.Context, id uuid.UUID) error {
	return s.devices.HardDelete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.devices.Statistics(ctx)
}

func parseDate(v string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
