package device

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDICOMPort is the conventional DICOM listener port.
const DefaultDICOMPort = 104

// Device is an imaging modality (CT, MR, US...) registered at an
// institution. Soft deleted rows keep their serial history and can be
// restored.
type Device struct {
	ID                  uuid.UUID  `db:"device_id" json:"device_id"`
	Code                string     `db:"device_code" json:"device_code"`
	Name                string     `db:"device_name" json:"device_name"`
	Modality            string     `db:"modality" json:"modality"`
	DeviceType          *string    `db:"device_type" json:"device_type,omitempty"`
	Manufacturer        *string    `db:"manufacturer" json:"manufacturer,omitempty"`
	Model               *string    `db:"model" json:"model,omitempty"`
	SerialNumber        *string    `db:"serial_number" json:"serial_number,omitempty"`
	InstitutionID       *uuid.UUID `db:"institution_id" json:"institution_id,omitempty"`
	AETitle             *string    `db:"aet_title" json:"aet_title,omitempty"`
	IPAddress           *string    `db:"ip_address" json:"ip_address,omitempty"`
	Port                int        `db:"port" json:"port"`
	Urgent              bool       `db:"urgent" json:"urgent"`
	Location            *string    `db:"location" json:"location,omitempty"`
	InstallationDate    *time.Time `db:"installation_date" json:"installation_date,omitempty"`
	LastMaintenanceDate *time.Time `db:"last_maintenance_date" json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time `db:"next_maintenance_date" json:"next_maintenance_date,omitempty"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	IsOnline            bool       `db:"is_online" json:"is_online"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// WithInstitution joins the owning institution's display fields.
type WithInstitution struct {
	Device
	InstitutionName *string `db:"institution_name" json:"institution_name,omitempty"`
	InstitutionCode *string `db:"institution_code" json:"institution_code,omitempty"`
}

type CreateInput struct {
	Code             string     `json:"device_code"`
	Name             string     `json:"device_name"`
	Modality         string     `json:"modality"`
	DeviceType       *string    `json:"device_type"`
	Manufacturer     *string    `json:"manufacturer"`
	Model            *string    `json:"model"`
	SerialNumber     *string    `json:"serial_number"`
	InstitutionID    *uuid.UUID `json:"institution_id"`
	AETitle          *string    `json:"aet_title"`
	IPAddress        *string    `json:"ip_address"`
	Port             *int       `json:"port"`
	Urgent           *bool      `json:"urgent"`
	Location         *string    `json:"location"`
	InstallationDate *string    `json:"installation_date"`
	Notes            *string    `json:"notes"`
}

type UpdateInput struct {
	Code                *string    `json:"device_code"`
	Name                *string    `json:"device_name"`
	Modality            *string    `json:"modality"`
	DeviceType          *string    `json:"device_type"`
	Manufacturer        *string    `json:"manufacturer"`
	Model               *string    `json:"model"`
	SerialNumber        *string    `json:"serial_number"`
	InstitutionID       *uuid.UUID `json:"institution_id"`
	AETitle             *string    `json:"aet_title"`
	IPAddress           *string    `json:"ip_address"`
	Port                *int       `json:"port"`
	Urgent              *bool      `json:"urgent"`
	Location            *string    `json:"location"`
	InstallationDate    *string    `json:"installation_date"`
	LastMaintenanceDate *string    `json:"last_maintenance_date"`
	NextMaintenanceDate *string    `json:"next_maintenance_date"`
	Notes               *string    `json:"notes"`
}

type Filters struct {
	DeviceType    string
	Modality      string
	InstitutionID *uuid.UUID
	IsActive      *bool
	IsOnline      *bool
	Search        string
}

// Statistics is the fleet-wide device summary.
type Statistics struct {
	Total       int            `json:"total"`
	ActiveCount int            `json:"active_count"`
	OnlineCount int            `json:"online_count"`
	ByType      map[string]int `json:"by_type"`
	ByModality  map[string]int `json:"by_modality"`
}
