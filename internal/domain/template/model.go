package template

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryNormal       = "normal"
	CategoryPathological = "pathological"
	CategoryEmergency    = "emergency"
	CategoryFollowup     = "followup"
)

var ValidCategories = map[string]bool{
	CategoryNormal: true, CategoryPathological: true,
	CategoryEmergency: true, CategoryFollowup: true,
}

const DefaultLanguage = "tr"

// Template is a canned report body a radiologist can start from instead of
// dictating from scratch.
type Template struct {
	ID          uuid.UUID  `db:"template_id" json:"template_id"`
	Name        string     `db:"template_name" json:"template_name"`
	Code        string     `db:"template_code" json:"template_code"`
	Category    string     `db:"category" json:"category"`
	Modality    string     `db:"modality" json:"modality"`
	BodyPart    *string    `db:"body_part" json:"body_part,omitempty"`
	Content     string     `db:"content" json:"content"`
	Description *string    `db:"description" json:"description,omitempty"`
	Language    string     `db:"language" json:"language"`
	Tags        []string   `db:"tags" json:"tags,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	IsDefault   bool       `db:"is_default" json:"is_default"`
	UsageCount  int        `db:"usage_count" json:"usage_count"`
	CreatedBy   *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// WithCreator adds the creating user's display fields.
type WithCreator struct {
	Template
	CreatorName  *string `db:"creator_name" json:"creator_name,omitempty"`
	CreatorEmail *string `db:"creator_email" json:"creator_email,omitempty"`
}

type CreateInput struct {
	Name        string   `json:"template_name"`
	Code        string   `json:"template_code"`
	Category    string   `json:"category"`
	Modality    string   `json:"modality"`
	BodyPart    *string  `json:"body_part"`
	Content     string   `json:"content"`
	Description *string  `json:"description"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
	IsDefault   *bool    `json:"is_default"`
}

type UpdateInput struct {
	Name        *string  `json:"template_name"`
	Code        *string  `json:"template_code"`
	Category    *string  `json:"category"`
	Modality    *string  `json:"modality"`
	BodyPart    *string  `json:"body_part"`
	Content     *string  `json:"content"`
	Description *string  `json:"description"`
	Language    *string  `json:"language"`
	Tags        []string `json:"tags"`
	IsActive    *bool    `json:"is_active"`
}

type Filters struct {
	Category  string
	Modality  string
	BodyPart  string
	Language  string
	IsActive  *bool
	IsDefault *bool
	CreatedBy *uuid.UUID
	Tags      []string
	Search    string
}

// Statistics summarizes the template catalog and its usage.
type Statistics struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	TotalUsage int            `json:"total_usage"`
	ByCategory map[string]int `json:"by_category"`
	ByModality map[string]int `json:"by_modality"`
	MostUsed   []*WithCreator `json:"most_used"`
	Recent     []*WithCreator `json:"recent"`
}
