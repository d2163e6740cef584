package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/radbridge/radbridge/internal/domain/study"
	"github.com/radbridge/radbridge/internal/platform/blobstore"
)

type mockRepo struct {
	store map[uuid.UUID]*Recording
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Recording)}
}

func (m *mockRepo) Create(_ context.Context, rec *Recording) error {
	m.store[rec.ID] = rec
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Recording, error) {
	rec, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *mockRepo) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	rec, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithDetails{Recording: *rec}, nil
}

func (m *mockRepo) ListByStudy(_ context.Context, studyID uuid.UUID) ([]*WithDetails, error) {
	var items []*WithDetails
	for _, rec := range m.store {
		if rec.StudyID == studyID {
			items = append(items, &WithDetails{Recording: *rec})
		}
	}
	return items, nil
}

func (m *mockRepo) List(_ context.Context, f Filters, _, _ int) ([]*WithDetails, int, error) {
	var items []*WithDetails
	for _, rec := range m.store {
		if f.RecordingType != "" && rec.RecordingType != f.RecordingType {
			continue
		}
		if f.TranscriptionStatus != "" && rec.TranscriptionStatus != f.TranscriptionStatus {
			continue
		}
		items = append(items, &WithDetails{Recording: *rec})
	}
	return items, len(items), nil
}

func (m *mockRepo) ListPendingTranscription(_ context.Context) ([]*WithDetails, error) {
	var items []*WithDetails
	for _, rec := range m.store {
		if rec.TranscriptionStatus == TranscriptionPending && !rec.IsArchived {
			items = append(items, &WithDetails{Recording: *rec})
		}
	}
	return items, nil
}

func (m *mockRepo) Update(_ context.Context, id uuid.UUID, in UpdateInput) error {
	rec, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if in.RecordingType != nil {
		rec.RecordingType = *in.RecordingType
	}
	if in.DurationSeconds != nil {
		rec.DurationSeconds = *in.DurationSeconds
	}
	if in.Notes != nil {
		rec.Notes = in.Notes
	}
	return nil
}

func (m *mockRepo) SetTranscriptionStatus(_ context.Context, id uuid.UUID, status string) error {
	rec, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	rec.TranscriptionStatus = status
	return nil
}

func (m *mockRepo) SetTranscription(_ context.Context, id uuid.UUID, text string) error {
	rec, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	rec.Transcription = &text
	rec.TranscriptionStatus = TranscriptionCompleted
	rec.IsProcessed = true
	return nil
}

func (m *mockRepo) SetArchived(_ context.Context, id uuid.UUID, archived bool) error {
	rec, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	rec.IsArchived = archived
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *mockRepo) Statistics(_ context.Context) (*Statistics, error) {
	stats := &Statistics{ByType: make(map[string]int)}
	for _, rec := range m.store {
		stats.Total++
		stats.ByType[rec.RecordingType]++
		stats.TotalDurationSeconds += rec.DurationSeconds
		stats.TotalSizeBytes += rec.FileSize
		switch rec.TranscriptionStatus {
		case TranscriptionPending:
			stats.Pending++
		case TranscriptionProcessing:
			stats.Processing++
		case TranscriptionCompleted:
			stats.Completed++
		case TranscriptionFailed:
			stats.Failed++
		}
		if rec.IsArchived {
			stats.Archived++
		}
	}
	return stats, nil
}

type stubStudyRepo struct {
	known map[uuid.UUID]bool
}

func (s *stubStudyRepo) GetByID(_ context.Context, id uuid.UUID) (*study.Study, error) {
	if !s.known[id] {
		return nil, study.ErrNotFound
	}
	return &study.Study{ID: id}, nil
}

func (s *stubStudyRepo) Create(context.Context, *study.Study) error { return nil }
func (s *stubStudyRepo) GetByIDWithDetails(context.Context, uuid.UUID) (*study.WithDetails, error) {
	return nil, study.ErrNotFound
}
func (s *stubStudyRepo) GetByStudyInstanceUID(context.Context, string) (*study.Study, error) {
	return nil, study.ErrNotFound
}
func (s *stubStudyRepo) List(context.Context, study.Filters, int, int) ([]*study.WithDetails, int, error) {
	return nil, 0, nil
}
func (s *stubStudyRepo) ListByPatient(context.Context, string) ([]*study.WithDetails, error) {
	return nil, nil
}
func (s *stubStudyRepo) ListByRadiologist(context.Context, uuid.UUID) ([]*study.WithDetails, error) {
	return nil, nil
}
func (s *stubStudyRepo) ListUrgentOpen(context.Context) ([]*study.WithDetails, error) {
	return nil, nil
}
func (s *stubStudyRepo) Update(context.Context, uuid.UUID, study.UpdateInput) error { return nil }
func (s *stubStudyRepo) Assign(context.Context, uuid.UUID, uuid.UUID) error         { return nil }
func (s *stubStudyRepo) SetStatus(context.Context, uuid.UUID, string) error         { return nil }
func (s *stubStudyRepo) Delete(context.Context, uuid.UUID) error                    { return nil }
func (s *stubStudyRepo) Statistics(context.Context) (*study.Statistics, error)      { return nil, nil }

func newTestService() (*Service, *mockRepo, *blobstore.MemoryStore, uuid.UUID) {
	repo := newMockRepo()
	blobs := blobstore.NewMemoryStore()
	studyID := uuid.New()
	studies := &stubStudyRepo{known: map[uuid.UUID]bool{studyID: true}}
	return NewService(repo, studies, blobs), repo, blobs, studyID
}

func upload(t *testing.T, svc *Service, studyID uuid.UUID) *Recording {
	t.Helper()
	body := strings.NewReader("RIFF....WAVEfmt")
	rec, err := svc.Upload(context.Background(), CreateInput{
		StudyID:  studyID,
		FileName: "dictation.wav",
	}, body, int64(body.Len()), uuid.New())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return rec
}

func TestUpload_StoresBlobAndMetadata(t *testing.T) {
	svc, _, blobs, studyID := newTestService()

	rec := upload(t, svc, studyID)
	if rec.RecordingType != TypeDictation {
		t.Errorf("recording_type = %q, want %q", rec.RecordingType, TypeDictation)
	}
	if rec.TranscriptionStatus != TranscriptionPending {
		t.Errorf("transcription_status = %q, want %q", rec.TranscriptionStatus, TranscriptionPending)
	}
	if rec.Language != DefaultLanguage {
		t.Errorf("language = %q, want %q", rec.Language, DefaultLanguage)
	}
	if !strings.HasSuffix(rec.ObjectKey, ".wav") {
		t.Errorf("object_key = %q, want .wav suffix", rec.ObjectKey)
	}
	if _, ok := blobs.Get(rec.ObjectKey); !ok {
		t.Error("audio bytes should be in the blob store")
	}
}

func TestUpload_UnknownStudy(t *testing.T) {
	svc, _, blobs, _ := newTestService()

	body := strings.NewReader("data")
	_, err := svc.Upload(context.Background(), CreateInput{
		StudyID:  uuid.New(),
		FileName: "x.wav",
	}, body, 4, uuid.New())
	if !errors.Is(err, ErrStudyNotFound) {
		t.Fatalf("err = %v, want ErrStudyNotFound", err)
	}
	if _, ok := blobs.Get("audio"); ok {
		t.Error("nothing should be stored for a rejected upload")
	}
}

func TestUpload_Validation(t *testing.T) {
	svc, _, _, studyID := newTestService()

	body := strings.NewReader("data")
	if _, err := svc.Upload(context.Background(), CreateInput{
		StudyID: studyID,
	}, body, 4, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("missing file name: err = %v, want ErrValidation", err)
	}

	if _, err := svc.Upload(context.Background(), CreateInput{
		StudyID: studyID, FileName: "x.wav",
	}, body, 0, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("zero size: err = %v, want ErrValidation", err)
	}

	if _, err := svc.Upload(context.Background(), CreateInput{
		StudyID: studyID, FileName: "x.wav", RecordingType: "podcast",
	}, body, 4, uuid.New()); !errors.Is(err, ErrValidation) {
		t.Errorf("bad type: err = %v, want ErrValidation", err)
	}
}

func TestTranscriptionLifecycle(t *testing.T) {
	svc, _, _, studyID := newTestService()
	rec := upload(t, svc, studyID)

	rec, err := svc.SetTranscriptionStatus(context.Background(), rec.ID, TranscriptionProcessing)
	if err != nil {
		t.Fatalf("pending->processing: %v", err)
	}

	rec, err = svc.SetTranscription(context.Background(), rec.ID, "Akciğerler doğal.")
	if err != nil {
		t.Fatalf("set transcription: %v", err)
	}
	if rec.TranscriptionStatus != TranscriptionCompleted {
		t.Errorf("status = %q, want %q", rec.TranscriptionStatus, TranscriptionCompleted)
	}
	if !rec.IsProcessed {
		t.Error("recording should be processed")
	}
	if rec.Transcription == nil || *rec.Transcription == "" {
		t.Error("transcription text should be stored")
	}
}

func TestTranscription_InvalidTransitions(t *testing.T) {
	svc, repo, _, studyID := newTestService()
	rec := upload(t, svc, studyID)

	// pending cannot jump straight to completed.
	if _, err := svc.SetTranscriptionStatus(context.Background(), rec.ID, TranscriptionCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending->completed: err = %v, want ErrInvalidTransition", err)
	}

	// setting text while still pending is rejected.
	if _, err := svc.SetTranscription(context.Background(), rec.ID, "text"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("text while pending: err = %v, want ErrInvalidTransition", err)
	}

	// completed is terminal.
	repo.store[rec.ID].TranscriptionStatus = TranscriptionCompleted
	if _, err := svc.SetTranscriptionStatus(context.Background(), rec.ID, TranscriptionProcessing); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed->processing: err = %v, want ErrInvalidTransition", err)
	}

	// failed can be retried.
	repo.store[rec.ID].TranscriptionStatus = TranscriptionFailed
	if _, err := svc.SetTranscriptionStatus(context.Background(), rec.ID, TranscriptionProcessing); err != nil {
		t.Errorf("failed->processing: %v", err)
	}
}

func TestDownloadURL(t *testing.T) {
	svc, _, _, studyID := newTestService()
	rec := upload(t, svc, studyID)

	url, err := svc.DownloadURL(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	if !strings.Contains(url, rec.ObjectKey) {
		t.Errorf("url = %q, want it to reference %q", url, rec.ObjectKey)
	}

	if _, err := svc.DownloadURL(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown recording: err = %v, want ErrNotFound", err)
	}
}

func TestArchive(t *testing.T) {
	svc, _, _, studyID := newTestService()
	rec := upload(t, svc, studyID)

	rec, err := svc.Archive(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !rec.IsArchived {
		t.Error("recording should be archived")
	}

	pending, err := svc.PendingTranscription(context.Background())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("archived recordings should not await transcription, got %d", len(pending))
	}

	rec, err = svc.Unarchive(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if rec.IsArchived {
		t.Error("recording should not be archived")
	}
}

func TestDelete_RemovesBlob(t *testing.T) {
	svc, _, blobs, studyID := newTestService()
	rec := upload(t, svc, studyID)

	if err := svc.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: err = %v, want ErrNotFound", err)
	}
	if _, ok := blobs.Get(rec.ObjectKey); ok {
		t.Error("audio bytes should be removed with the recording")
	}
}

func TestStatistics(t *testing.T) {
	svc, repo, _, studyID := newTestService()
	first := upload(t, svc, studyID)
	upload(t, svc, studyID)
	repo.store[first.ID].TranscriptionStatus = TranscriptionProcessing

	stats, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.Pending != 1 || stats.Processing != 1 {
		t.Errorf("pending = %d, processing = %d, want 1, 1", stats.Pending, stats.Processing)
	}
	if stats.ByType[TypeDictation] != 2 {
		t.Errorf("by_type = %v", stats.ByType)
	}
	if stats.TotalSizeBytes == 0 {
		t.Error("total size should be non-zero")
	}
}
