package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/radbridge/radbridge/internal/domain/study"
	"github.com/radbridge/radbridge/internal/platform/blobstore"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrStudyNotFound     = errors.New("study not found")
	ErrInvalidTransition = errors.New("invalid transcription status transition")
)

// MaxUploadBytes caps a single dictation upload.
const MaxUploadBytes = 100 << 20

type Service struct {
	recordings Repository
	studies    study.Repository
	blobs      blobstore.BlobStore
}

func NewService(recordings Repository, studies study.Repository, blobs blobstore.BlobStore) *Service {
	return &Service{recordings: recordings, studies: studies, blobs: blobs}
}

func (s *Service) List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error) {
	return s.recordings.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return s.recordings.GetByIDWithDetails(ctx, id)
}

func (s *Service) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*WithDetails, error) {
	return s.recordings.ListByStudy(ctx, studyID)
}

func (s *Service) PendingTranscription(ctx context.Context) ([]*WithDetails, error) {
	return s.recordings.ListPendingTranscription(ctx)
}

// Upload stores the audio bytes in the blob store and the metadata row in the
// database. The object key embeds the study and recording IDs so the bucket
// stays navigable.
func (s *Service) Upload(ctx context.Context, in CreateInput, body io.Reader, size int64, recordedBy uuid.UUID) (*Recording, error) {
	if in.StudyID == uuid.Nil || in.FileName == "" {
		return nil, fmt.Errorf("%w: study_id and file_name are required", ErrValidation)
	}
	if size <= 0 || size > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file size out of range", ErrValidation)
	}
	if in.RecordingType == "" {
		in.RecordingType = TypeDictation
	}
	if !ValidTypes[in.RecordingType] {
		return nil, fmt.Errorf("%w: invalid recording_type", ErrValidation)
	}
	if in.MimeType == "" {
		in.MimeType = "audio/wav"
	}

	if _, err := s.studies.GetByID(ctx, in.StudyID); err != nil {
		if errors.Is(err, study.ErrNotFound) {
			return nil, ErrStudyNotFound
		}
		return nil, fmt.Errorf("check study: %w", err)
	}

	rec := &Recording{
		ID:                  uuid.New(),
		StudyID:             in.StudyID,
		ReportID:            in.ReportID,
		RecordingType:       in.RecordingType,
		FileName:            in.FileName,
		FileSize:            size,
		MimeType:            in.MimeType,
		DurationSeconds:     in.DurationSeconds,
		TranscriptionStatus: TranscriptionPending,
		RecordedBy:          recordedBy,
		Language:            in.Language,
		Notes:               in.Notes,
	}
	if rec.Language == "" {
		rec.Language = DefaultLanguage
	}
	rec.ObjectKey = fmt.Sprintf("audio/%s/%s%s",
		rec.StudyID, rec.ID, path.Ext(in.FileName))

	if err := s.blobs.Put(ctx, rec.ObjectKey, rec.MimeType, body, size); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		// Roll back the orphaned object; the DB row is the source of truth.
		_ = s.blobs.Delete(ctx, rec.ObjectKey)
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return s.recordings.GetByID(ctx, rec.ID)
}

// DownloadURL returns a short-lived presigned link to the audio object.
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	rec, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.PresignGet(ctx, rec.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("presign audio: %w", err)
	}
	return url, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Recording, error) {
	if in.RecordingType != nil && !ValidTypes[*in.RecordingType] {
		return nil, fmt.Errorf("%w: invalid recording_type", ErrValidation)
	}
	if in.DurationSeconds != nil && *in.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration_seconds cannot be negative", ErrValidation)
	}
	if err := s.recordings.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.recordings.GetByID(ctx, id)
}

// SetTranscriptionStatus applies a validated status transition.
func (s *Service) SetTranscriptionStatus(ctx context.Context, id uuid.UUID, status string) (*Recording, error) {
	if !ValidTranscriptionStatuses[status] {
		return nil, fmt.Errorf("%w: invalid transcription_status", ErrValidation)
	}
	rec, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rec.TranscriptionStatus, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition,
			rec.TranscriptionStatus, status)
	}
	if err := s.recordings.SetTranscriptionStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.recordings.GetByID(ctx, id)
}

// SetTranscription stores the finished text and completes the transcription.
func (s *Service) SetTranscription(ctx context.Context, id uuid.UUID, text string) (*Recording, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: transcription text is required", ErrValidation)
	}
	rec, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.TranscriptionStatus != TranscriptionProcessing {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition,
			rec.TranscriptionStatus, TranscriptionCompleted)
	}
	if err := s.recordings.SetTranscription(ctx, id, text); err != nil {
		return nil, err
	}
	return s.recordings.GetByID(ctx, id)
}

func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*Recording, error) {
	return s.setArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, id uuid.UUID) (*Recording, error) {
	return s.setArchived(ctx, id, false)
}

func (s *Service) setArchived(ctx context.Context, id uuid.UUID, archived bool) (*Recording, error) {
	if err := s.recordings.SetArchived(ctx, id, archived); err != nil {
		return nil, err
	}
	return s.recordings.GetByID(ctx, id)
}

// Delete removes the metadata row and the stored audio object.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.recordings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.recordings.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, rec.ObjectKey); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
		return fmt.Errorf("delete audio object: %w", err)
	}
	return nil
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.recordings.Statistics(ctx)
}
