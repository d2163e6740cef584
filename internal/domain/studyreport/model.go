package studyreport

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePreliminary   = "preliminary"
	TypeFinal         = "final"
	TypeRevised       = "revised"
	TypeSecondOpinion = "second_opinion"
	TypeAddendum      = "addendum"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

var ValidTypes = map[string]bool{
	TypePreliminary: true, TypeFinal: true, TypeRevised: true,
	TypeSecondOpinion: true, TypeAddendum: true,
}

var ValidStatuses = map[string]bool{
	StatusDraft: true, StatusSubmitted: true, StatusApproved: true, StatusRejected: true,
}

// Report is one written interpretation of a study. A study accumulates
// several of these over its life, each stamped with a version number.
type Report struct {
	ID              uuid.UUID  `db:"report_id" json:"report_id"`
	StudyID         uuid.UUID  `db:"study_id" json:"study_id"`
	Type            string     `db:"report_type" json:"report_type"`
	Status          string     `db:"report_status" json:"report_status"`
	ReportText      string     `db:"report_text" json:"report_text"`
	Findings        *string    `db:"findings" json:"findings,omitempty"`
	Impression      *string    `db:"impression" json:"impression,omitempty"`
	Recommendations *string    `db:"recommendations" json:"recommendations,omitempty"`
	StoragePath     *string    `db:"storage_path" json:"storage_path,omitempty"`
	RadiologistID   uuid.UUID  `db:"radiologist_id" json:"radiologist_id"`
	ReviewerID      *uuid.UUID `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReportedAt      time.Time  `db:"reported_at" json:"reported_at"`
	SubmittedAt     *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	Version         int        `db:"version" json:"version"`
	IsFinal         bool       `db:"is_final" json:"is_final"`
	IsSigned        bool       `db:"is_signed" json:"is_signed"`
	Signature       *string    `db:"signature" json:"signature,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// WithDetails joins radiologist, reviewer and study display fields.
type WithDetails struct {
	Report
	RadiologistName       *string `db:"radiologist_name" json:"radiologist_name,omitempty"`
	RadiologistEmail      *string `db:"radiologist_email" json:"radiologist_email,omitempty"`
	ReviewerName          *string `db:"reviewer_name" json:"reviewer_name,omitempty"`
	ReviewerEmail         *string `db:"reviewer_email" json:"reviewer_email,omitempty"`
	StudyPatientName      *string `db:"study_patient_name" json:"study_patient_name,omitempty"`
	StudyAccessionNumber  *string `db:"study_accession_number" json:"study_accession_number,omitempty"`
	StudyInstanceUID      *string `db:"study_instance_uid" json:"study_instance_uid,omitempty"`
}

type CreateInput struct {
	StudyID         uuid.UUID `json:"study_id"`
	Type            string    `json:"report_type"`
	ReportText      string    `json:"report_text"`
	Findings        *string   `json:"findings"`
	Impression      *string   `json:"impression"`
	Recommendations *string   `json:"recommendations"`
	Notes           *string   `json:"notes"`
}

type UpdateInput struct {
	Type            *string `json:"report_type"`
	ReportText      *string `json:"report_text"`
	Findings        *string `json:"findings"`
	Impression      *string `json:"impression"`
	Recommendations *string `json:"recommendations"`
	Notes           *string `json:"notes"`
}

type Filters struct {
	StudyID       *uuid.UUID
	Type          string
	Status        string
	RadiologistID *uuid.UUID
	ReviewerID    *uuid.UUID
	IsFinal       *bool
	IsSigned      *bool
	ReportedFrom  *time.Time
	ReportedTo    *time.Time
}

// Statistics is the report workload split by status in addition to type counts.
type Statistics struct {
	Total     int            `json:"total"`
	Draft     int            `json:"draft"`
	Submitted int            `json:"submitted"`
	Approved  int            `json:"approved"`
	Rejected  int            `json:"rejected"`
	Signed    int            `json:"signed"`
	ByType    map[string]int `json:"by_type"`
}

// RadiologistStatistics summarizes one radiologist's reporting output.
type RadiologistStatistics struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Submitted int `json:"submitted"`
	Approved  int `json:"approved"`
	Final     int `json:"final"`
	Signed    int `json:"signed"`
}
