package study

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusReported   = "reported"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PriorityRoutine = "routine"
	PriorityUrgent  = "urgent"
	PriorityStat    = "stat"
)

var ValidStatuses = map[string]bool{
	StatusPending: true, StatusAssigned: true, StatusInProgress: true,
	StatusReported: true, StatusCompleted: true, StatusCancelled: true,
}

var ValidPriorities = map[string]bool{
	PriorityRoutine: true, PriorityUrgent: true, PriorityStat: true,
}

// statusTransitions defines which status changes a study may take.
// Completed and cancelled are terminal.
var statusTransitions = map[string]map[string]bool{
	StatusPending:    {StatusAssigned: true, StatusCancelled: true},
	StatusAssigned:   {StatusInProgress: true, StatusPending: true, StatusCancelled: true},
	StatusInProgress: {StatusReported: true, StatusAssigned: true, StatusCancelled: true},
	StatusReported:   {StatusCompleted: true, StatusInProgress: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether a study may move from one status to another.
func CanTransition(from, to string) bool {
	return statusTransitions[from][to]
}

// Study is one radiological examination, keyed by the DICOM study instance
// UID delivered with the images.
type Study struct {
	ID                  uuid.UUID  `db:"study_id" json:"study_id"`
	StudyInstanceUID    string     `db:"study_instance_uid" json:"study_instance_uid"`
	AccessionNumber     *string    `db:"accession_number" json:"accession_number,omitempty"`
	PatientID           string     `db:"patient_id" json:"patient_id"`
	PatientName         string     `db:"patient_name" json:"patient_name"`
	PatientBirthDate    *time.Time `db:"patient_birth_date" json:"patient_birth_date,omitempty"`
	PatientSex          *string    `db:"patient_sex" json:"patient_sex,omitempty"`
	StudyDate           time.Time  `db:"study_date" json:"study_date"`
	StudyTime           *string    `db:"study_time" json:"study_time,omitempty"`
	StudyDescription    *string    `db:"study_description" json:"study_description,omitempty"`
	Modality            string     `db:"modality" json:"modality"`
	InstitutionID       *uuid.UUID `db:"institution_id" json:"institution_id,omitempty"`
	DeviceID            *uuid.UUID `db:"device_id" json:"device_id,omitempty"`
	ReferringPhysician  *string    `db:"referring_physician" json:"referring_physician,omitempty"`
	PerformingPhysician *string    `db:"performing_physician" json:"performing_physician,omitempty"`
	Status              string     `db:"study_status" json:"study_status"`
	Priority            string     `db:"priority" json:"priority"`
	AssignedTo          *uuid.UUID `db:"assigned_to" json:"assigned_to,omitempty"`
	NumImages           int        `db:"num_images" json:"num_images"`
	NumSeries           int        `db:"num_series" json:"num_series"`
	IsUrgent            bool       `db:"is_urgent" json:"is_urgent"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// WithDetails joins institution, device and assignee display fields.
type WithDetails struct {
	Study
	InstitutionName         *string `db:"institution_name" json:"institution_name,omitempty"`
	InstitutionCode         *string `db:"institution_code" json:"institution_code,omitempty"`
	DeviceName              *string `db:"device_name" json:"device_name,omitempty"`
	DeviceCode              *string `db:"device_code" json:"device_code,omitempty"`
	AssignedRadiologistName *string `db:"assigned_radiologist_name" json:"assigned_radiologist_name,omitempty"`
	AssignedRadiologistMail *string `db:"assigned_radiologist_email" json:"assigned_radiologist_email,omitempty"`
}

type CreateInput struct {
	StudyInstanceUID    string     `json:"study_instance_uid"`
	AccessionNumber     *string    `json:"accession_number"`
	PatientID           string     `json:"patient_id"`
	PatientName         string     `json:"patient_name"`
	PatientBirthDate    *string    `json:"patient_birth_date"`
	PatientSex          *string    `json:"patient_sex"`
	StudyDate           string     `json:"study_date"`
	StudyTime           *string    `json:"study_time"`
	StudyDescription    *string    `json:"study_description"`
	Modality            string     `json:"modality"`
	InstitutionID       *uuid.UUID `json:"institution_id"`
	DeviceID            *uuid.UUID `json:"device_id"`
	ReferringPhysician  *string    `json:"referring_physician"`
	PerformingPhysician *string    `json:"performing_physician"`
	Priority            string     `json:"priority"`
	NumImages           *int       `json:"num_images"`
	NumSeries           *int       `json:"num_series"`
	IsUrgent            *bool      `json:"is_urgent"`
}

type UpdateInput struct {
	AccessionNumber     *string    `json:"accession_number"`
	PatientName         *string    `json:"patient_name"`
	PatientBirthDate    *string    `json:"patient_birth_date"`
	PatientSex          *string    `json:"patient_sex"`
	StudyDate           *string    `json:"study_date"`
	StudyTime           *string    `json:"study_time"`
	StudyDescription    *string    `json:"study_description"`
	Modality            *string    `json:"modality"`
	InstitutionID       *uuid.UUID `json:"institution_id"`
	DeviceID            *uuid.UUID `json:"device_id"`
	ReferringPhysician  *string    `json:"referring_physician"`
	PerformingPhysician *string    `json:"performing_physician"`
	Priority            *string    `json:"priority"`
	NumImages           *int       `json:"num_images"`
	NumSeries           *int       `json:"num_series"`
	IsUrgent            *bool      `json:"is_urgent"`
}

type Filters struct {
	Status        string
	Priority      string
	Modality      string
	InstitutionID *uuid.UUID
	DeviceID      *uuid.UUID
	AssignedTo    *uuid.UUID
	PatientID     string
	DateFrom      *time.Time
	DateTo        *time.Time
	IsUrgent      *bool
	Search        string
}

// Statistics reports the study workload broken down by status.
type Statistics struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Reported   int `json:"reported"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Urgent     int `json:"urgent"`
}
