package institution

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeHospital      = "hospital"
	TypeMedicalCenter = "medical_center"
	TypeImagingCenter = "imaging_center"
	TypeClinic        = "clinic"
)

var ValidTypes = map[string]bool{
	TypeHospital: true, TypeMedicalCenter: true, TypeImagingCenter: true, TypeClinic: true,
}

// Institution is a hospital or imaging center that sends studies for
// reporting.
type Institution struct {
	ID            uuid.UUID  `db:"institution_id" json:"institution_id"`
	Code          string     `db:"institution_code" json:"institution_code"`
	Name          string     `db:"institution_name" json:"institution_name"`
	Type          string     `db:"institution_type" json:"institution_type"`
	Address       *string    `db:"address" json:"address,omitempty"`
	City          *string    `db:"city" json:"city,omitempty"`
	County        *string    `db:"county" json:"county,omitempty"`
	Country       string     `db:"country" json:"country"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Email         *string    `db:"email" json:"email,omitempty"`
	Website       *string    `db:"website" json:"website,omitempty"`
	ContactPerson *string    `db:"contact_person" json:"contact_person,omitempty"`
	LicenseNumber *string    `db:"license_number" json:"license_number,omitempty"`
	Accreditation *string    `db:"accreditation" json:"accreditation,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	CreatedBy     *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateInput struct {
	Name          string  `json:"institution_name"`
	Type          string  `json:"institution_type"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	Website       *string `json:"website"`
	City          *string `json:"city"`
	County        *string `json:"county"`
	Country       string  `json:"country"`
}

type UpdateInput struct {
	Name          *string `json:"institution_name"`
	Type          *string `json:"institution_type"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	ContactPerson *string `json:"contact_person"`
	LicenseNumber *string `json:"license_number"`
	Accreditation *string `json:"accreditation"`
	IsActive      *bool   `json:"is_active"`
}

type Filters struct {
	Type     string
	City     string
	Country  string
	IsActive *bool
	Search   string
}

// Statistics is the study workload summary for one institution.
type Statistics struct {
	TotalStudies      int `json:"total_studies"`
	PendingStudies    int `json:"pending_studies"`
	CompletedStudies  int `json:"completed_studies"`
	TotalRadiologists int `json:"total_radiologists"`
}
