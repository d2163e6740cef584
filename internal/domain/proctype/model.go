package proctype

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryDiagnostic     = "diagnostic"
	CategoryInterventional = "interventional"
	CategoryScreening      = "screening"
	CategoryTherapeutic    = "therapeutic"
)

var ValidCategories = map[string]bool{
	CategoryDiagnostic: true, CategoryInterventional: true,
	CategoryScreening: true, CategoryTherapeutic: true,
}

const (
	DoseNone     = "none"
	DoseLow      = "low"
	DoseMedium   = "medium"
	DoseHigh     = "high"
	DoseVeryHigh = "very_high"
)

var ValidDoses = map[string]bool{
	DoseNone: true, DoseLow: true, DoseMedium: true,
	DoseHigh: true, DoseVeryHigh: true,
}

// DefaultDurationMinutes is used when a procedure is created without a
// typical duration.
const DefaultDurationMinutes = 30

// ProcedureType is one entry in the examination catalog, keyed by its
// procedure code.
type ProcedureType struct {
	ID                      uuid.UUID  `db:"proc_type_id" json:"proc_type_id"`
	Code                    string     `db:"proc_code" json:"proc_code"`
	Name                    string     `db:"name" json:"name"`
	NameEN                  *string    `db:"name_en" json:"name_en,omitempty"`
	Description             *string    `db:"description" json:"description,omitempty"`
	Modality                string     `db:"modality" json:"modality"`
	BodyPart                *string    `db:"body_part" json:"body_part,omitempty"`
	Category                string     `db:"category" json:"category"`
	IsEmergency             bool       `db:"is_emergency" json:"is_emergency"`
	IsContrast              bool       `db:"is_contrast" json:"is_contrast"`
	RequiresPreparation     bool       `db:"requires_preparation" json:"requires_preparation"`
	PreparationInstructions *string    `db:"preparation_instructions" json:"preparation_instructions,omitempty"`
	TypicalDuration         int        `db:"typical_duration" json:"typical_duration"`
	RadiationDose           *string    `db:"radiation_dose" json:"radiation_dose,omitempty"`
	Price                   *float64   `db:"price" json:"price,omitempty"`
	CPTCode                 *string    `db:"cpt_code" json:"cpt_code,omitempty"`
	ICDCodes                []string   `db:"icd_codes" json:"icd_codes,omitempty"`
	Tags                    []string   `db:"tags" json:"tags,omitempty"`
	IsActive                bool       `db:"is_active" json:"is_active"`
	UsageCount              int        `db:"usage_count" json:"usage_count"`
	CreatedBy               *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

type WithCreator struct {
	ProcedureType
	CreatorName  *string `db:"creator_name" json:"creator_name,omitempty"`
	CreatorEmail *string `db:"creator_email" json:"creator_email,omitempty"`
}

type CreateInput struct {
	Code                    string   `json:"proc_code"`
	Name                    string   `json:"name"`
	NameEN                  *string  `json:"name_en"`
	Description             *string  `json:"description"`
	Modality                string   `json:"modality"`
	BodyPart                *string  `json:"body_part"`
	Category                string   `json:"category"`
	IsEmergency             *bool    `json:"is_emergency"`
	IsContrast              *bool    `json:"is_contrast"`
	RequiresPreparation     *bool    `json:"requires_preparation"`
	PreparationInstructions *string  `json:"preparation_instructions"`
	TypicalDuration         *int     `json:"typical_duration"`
	RadiationDose           *string  `json:"radiation_dose"`
	Price                   *float64 `json:"price"`
	CPTCode                 *string  `json:"cpt_code"`
	ICDCodes                []string `json:"icd_codes"`
	Tags                    []string `json:"tags"`
}

type UpdateInput struct {
	Code                    *string  `json:"proc_code"`
	Name                    *string  `json:"name"`
	NameEN                  *string  `json:"name_en"`
	Description             *string  `json:"description"`
	Modality                *string  `json:"modality"`
	BodyPart                *string  `json:"body_part"`
	Category                *string  `json:"category"`
	IsEmergency             *bool    `json:"is_emergency"`
	IsContrast              *bool    `json:"is_contrast"`
	RequiresPreparation     *bool    `json:"requires_preparation"`
	PreparationInstructions *string  `json:"preparation_instructions"`
	TypicalDuration         *int     `json:"typical_duration"`
	RadiationDose           *string  `json:"radiation_dose"`
	Price                   *float64 `json:"price"`
	CPTCode                 *string  `json:"cpt_code"`
	ICDCodes                []string `json:"icd_codes"`
	Tags                    []string `json:"tags"`
	IsActive                *bool    `json:"is_active"`
}

type Filters struct {
	Modality            string
	BodyPart            string
	Category            string
	IsEmergency         *bool
	IsContrast          *bool
	RequiresPreparation *bool
	RadiationDose       string
	IsActive            *bool
	MinPrice            *float64
	MaxPrice            *float64
	Tags                []string
	Search              string
}

// Statistics summarizes the procedure catalog.
type Statistics struct {
	Total           int            `json:"total"`
	EmergencyCount  int            `json:"emergency_count"`
	ContrastCount   int            `json:"contrast_count"`
	AverageDuration float64        `json:"average_duration"`
	TotalRevenue    float64        `json:"total_revenue"`
	ByModality      map[string]int `json:"by_modality"`
	ByCategory      map[string]int `json:"by_category"`
	MostUsed        []*WithCreator `json:"most_used"`
}
