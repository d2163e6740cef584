package audio

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDictation    = "dictation"
	TypeVoiceNote    = "voice_note"
	TypeConsultation = "consultation"
	TypeAnnotation   = "annotation"
)

var ValidTypes = map[string]bool{
	TypeDictation: true, TypeVoiceNote: true,
	TypeConsultation: true, TypeAnnotation: true,
}

const (
	TranscriptionPending    = "pending"
	TranscriptionProcessing = "processing"
	TranscriptionCompleted  = "completed"
	TranscriptionFailed     = "failed"
)

var ValidTranscriptionStatuses = map[string]bool{
	TranscriptionPending: true, TranscriptionProcessing: true,
	TranscriptionCompleted: true, TranscriptionFailed: true,
}

// transcriptionTransitions defines the allowed status moves. A failed
// transcription may be retried.
var transcriptionTransitions = map[string]map[string]bool{
	TranscriptionPending:    {TranscriptionProcessing: true},
	TranscriptionProcessing: {TranscriptionCompleted: true, TranscriptionFailed: true},
	TranscriptionFailed:     {TranscriptionProcessing: true},
	TranscriptionCompleted:  {},
}

// CanTransition reports whether the transcription status may move from one
// state to another.
func CanTransition(from, to string) bool {
	return transcriptionTransitions[from][to]
}

const DefaultLanguage = "tr"

// Recording is one audio file attached to a study. The audio bytes live in
// object storage under ObjectKey; the row carries the metadata.
type Recording struct {
	ID                  uuid.UUID  `db:"recording_id" json:"recording_id"`
	StudyID             uuid.UUID  `db:"study_id" json:"study_id"`
	ReportID            *uuid.UUID `db:"report_id" json:"report_id,omitempty"`
	RecordingType       string     `db:"recording_type" json:"recording_type"`
	ObjectKey           string     `db:"object_key" json:"object_key"`
	FileName            string     `db:"file_name" json:"file_name"`
	FileSize            int64      `db:"file_size" json:"file_size"`
	MimeType            string     `db:"mime_type" json:"mime_type"`
	DurationSeconds     int        `db:"duration_seconds" json:"duration_seconds"`
	Transcription       *string    `db:"transcription" json:"transcription,omitempty"`
	TranscriptionStatus string     `db:"transcription_status" json:"transcription_status"`
	RecordedBy          uuid.UUID  `db:"recorded_by" json:"recorded_by"`
	RecordedAt          time.Time  `db:"recorded_at" json:"recorded_at"`
	IsProcessed         bool       `db:"is_processed" json:"is_processed"`
	IsArchived          bool       `db:"is_archived" json:"is_archived"`
	Language            string     `db:"language" json:"language"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// WithDetails joins recorder and study display fields.
type WithDetails struct {
	Recording
	RecordedByName       *string `db:"recorded_by_name" json:"recorded_by_name,omitempty"`
	RecordedByEmail      *string `db:"recorded_by_email" json:"recorded_by_email,omitempty"`
	StudyPatientName     *string `db:"study_patient_name" json:"study_patient_name,omitempty"`
	StudyAccessionNumber *string `db:"study_accession_number" json:"study_accession_number,omitempty"`
}

// CreateInput carries the metadata of an upload; the audio bytes travel
// separately as the request body part.
type CreateInput struct {
	StudyID         uuid.UUID  `json:"study_id"`
	ReportID        *uuid.UUID `json:"report_id"`
	RecordingType   string     `json:"recording_type"`
	FileName        string     `json:"file_name"`
	MimeType        string     `json:"mime_type"`
	DurationSeconds int        `json:"duration_seconds"`
	Language        string     `json:"language"`
	Notes           *string    `json:"notes"`
}

type UpdateInput struct {
	RecordingType   *string `json:"recording_type"`
	DurationSeconds *int    `json:"duration_seconds"`
	Language        *string `json:"language"`
	Notes           *string `json:"notes"`
}

type Filters struct {
	StudyID             *uuid.UUID
	ReportID            *uuid.UUID
	RecordingType       string
	RecordedBy          *uuid.UUID
	TranscriptionStatus string
	IsProcessed         *bool
	IsArchived          *bool
	Language            string
	RecordedFrom        *time.Time
	RecordedTo          *time.Time
}

// Statistics summarizes the recording inventory.
type Statistics struct {
	Total                int            `json:"total"`
	Pending              int            `json:"pending"`
	Processing           int            `json:"processing"`
	Completed            int            `json:"completed"`
	Failed               int            `json:"failed"`
	Archived             int            `json:"archived"`
	TotalDurationSeconds int            `json:"total_duration_seconds"`
	TotalSizeBytes       int64          `json:"total_size_bytes"`
	ByType               map[string]int `json:"by_type"`
}
