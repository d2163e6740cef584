package company

import (
	"time"

	"github.com/google/uuid"
)

// Status values a company moves through over its contract lifetime.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

const (
	LicenseHospital      = "hospital"
	LicenseImagingCenter = "imaging_center"
	LicenseTelemedicine  = "telemedicine"
	LicenseOther         = "other"
)

const (
	ServiceBasic    = "basic"
	ServiceStandard = "standard"
	ServicePremium  = "premium"
	ServiceCustom   = "custom"
)

var ValidStatuses = map[string]bool{
	StatusActive: true, StatusInactive: true, StatusSuspended: true, StatusPending: true,
}

var ValidLicenseTypes = map[string]bool{
	LicenseHospital: true, LicenseImagingCenter: true, LicenseTelemedicine: true, LicenseOther: true,
}

var ValidServiceLevels = map[string]bool{
	ServiceBasic: true, ServiceStandard: true, ServicePremium: true, ServiceCustom: true,
}

// Company is a contracted teleradiology customer. Rows are soft deleted via
// deleted_at and excluded from every lookup until restored.
type Company struct {
	ID                  uuid.UUID  `db:"company_id" json:"company_id"`
	Title               string     `db:"company_title" json:"company_title"`
	Name                string     `db:"company_name" json:"company_name"`
	Code                string     `db:"company_code" json:"company_code"`
	TaxNumber           *string    `db:"tax_number" json:"tax_number,omitempty"`
	TaxOffice           *string    `db:"tax_office" json:"tax_office,omitempty"`
	Email               *string    `db:"email" json:"email,omitempty"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	Website             *string    `db:"website" json:"website,omitempty"`
	Address             *string    `db:"address" json:"address,omitempty"`
	City                *string    `db:"city" json:"city,omitempty"`
	State               *string    `db:"state" json:"state,omitempty"`
	Country             string     `db:"country" json:"country"`
	PostalCode          *string    `db:"postal_code" json:"postal_code,omitempty"`
	LicenseType         *string    `db:"license_type" json:"license_type,omitempty"`
	HealthLicenseNumber *string    `db:"health_license_number" json:"health_license_number,omitempty"`
	LicenseExpiryDate   *time.Time `db:"license_expiry_date" json:"license_expiry_date,omitempty"`
	ServiceLevel        *string    `db:"service_level" json:"service_level,omitempty"`
	SLAAgreementURL     *string    `db:"sla_agreement_url" json:"sla_agreement_url,omitempty"`
	ContractStartDate   *time.Time `db:"contract_start_date" json:"contract_start_date,omitempty"`
	ContractEndDate     *time.Time `db:"contract_end_date" json:"contract_end_date,omitempty"`
	BillingCycle        *string    `db:"billing_cycle" json:"billing_cycle,omitempty"`
	Currency            string     `db:"currency" json:"currency"`
	Status              string     `db:"status" json:"status"`
	Timezone            string     `db:"timezone" json:"timezone"`
	Language            string     `db:"language" json:"language"`
	CreatedBy           *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy           *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type CreateInput struct {
	Title               string  `json:"company_title"`
	Name                string  `json:"company_name"`
	Code                string  `json:"company_code"`
	TaxNumber           *string `json:"tax_number"`
	TaxOffice           *string `json:"tax_office"`
	Email               *string `json:"email"`
	Phone               *string `json:"phone"`
	Website             *string `json:"website"`
	Address             *string `json:"address"`
	City                *string `json:"city"`
	State               *string `json:"state"`
	Country             string  `json:"country"`
	PostalCode          *string `json:"postal_code"`
	LicenseType         *string `json:"license_type"`
	HealthLicenseNumber *string `json:"health_license_number"`
	LicenseExpiryDate   *string `json:"license_expiry_date"`
	ServiceLevel        *string `json:"service_level"`
	SLAAgreementURL     *string `json:"sla_agreement_url"`
	ContractStartDate   *string `json:"contract_start_date"`
	ContractEndDate     *string `json:"contract_end_date"`
	BillingCycle        *string `json:"billing_cycle"`
	Currency            string  `json:"currency"`
	Status              string  `json:"status"`
	Timezone            string  `json:"timezone"`
	Language            string  `json:"language"`
}

type UpdateInput struct {
	Title               *string `json:"company_title"`
	Name                *string `json:"company_name"`
	TaxNumber           *string `json:"tax_number"`
	TaxOffice           *string `json:"tax_office"`
	Email               *string `json:"email"`
	Phone               *string `json:"phone"`
	Website             *string `json:"website"`
	Address             *string `json:"address"`
	City                *string `json:"city"`
	State               *string `json:"state"`
	Country             *string `json:"country"`
	PostalCode          *string `json:"postal_code"`
	LicenseType         *string `json:"license_type"`
	HealthLicenseNumber *string `json:"health_license_number"`
	LicenseExpiryDate   *string `json:"license_expiry_date"`
	ServiceLevel        *string `json:"service_level"`
	SLAAgreementURL     *string `json:"sla_agreement_url"`
	ContractStartDate   *string `json:"contract_start_date"`
	ContractEndDate     *string `json:"contract_end_date"`
	BillingCycle        *string `json:"billing_cycle"`
	Currency            *string `json:"currency"`
	Status              *string `json:"status"`
	Timezone            *string `json:"timezone"`
	Language            *string `json:"language"`
}

type Filters struct {
	Status       string
	LicenseType  string
	ServiceLevel string
	City         string
	Country      string
}

// Statistics aggregates company counts by lifecycle and contract dimensions.
type Statistics struct {
	Total             int            `json:"total"`
	ActiveCount       int            `json:"active_count"`
	StatusCount       map[string]int `json:"status_count"`
	LicenseTypeCount  map[string]int `json:"license_type_count"`
	ServiceLevelCount map[string]int `json:"service_level_count"`
}
