package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radbridge/radbridge/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordingCols = `recording_id, study_id, report_id, recording_type,
	object_key, file_name, file_size, mime_type, duration_seconds,
	transcription, transcription_status, recorded_by, recorded_at,
	is_processed, is_archived, language, notes, created_at, updated_at`

const recordingJoinQuery = `
	SELECT ar.recording_id, ar.study_id, ar.report_id, ar.recording_type,
		ar.object_key, ar.file_name, ar.file_size, ar.mime_type,
		ar.duration_seconds, ar.transcription, ar.transcription_status,
		ar.recorded_by, ar.recorded_at, ar.is_processed, ar.is_archived,
		ar.language, ar.notes, ar.created_at, ar.updated_at,
		u.first_name || ' ' || u.last_name, u.email,
		s.patient_name, s.accession_number
	FROM audio_recordings ar
	LEFT JOIN users u ON u.id = ar.recorded_by
	LEFT JOIN studies s ON s.study_id = ar.study_id`

func scanRecording(row pgx.Row) (*Recording, error) {
	var rec Recording
	err := row.Scan(&rec.ID, &rec.StudyID, &rec.ReportID, &rec.RecordingType,
		&rec.ObjectKey, &rec.FileName, &rec.FileSize, &rec.MimeType,
		&rec.DurationSeconds, &rec.Transcription, &rec.TranscriptionStatus,
		&rec.RecordedBy, &rec.RecordedAt, &rec.IsProcessed, &rec.IsArchived,
		&rec.Language, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func scanRecordingWithDetails(row pgx.Row) (*WithDetails, error) {
	var rec WithDetails
	err := row.Scan(&rec.ID, &rec.StudyID, &rec.ReportID, &rec.RecordingType,
		&rec.ObjectKey, &rec.FileName, &rec.FileSize, &rec.MimeType,
		&rec.DurationSeconds, &rec.Transcription, &rec.TranscriptionStatus,
		&rec.RecordedBy, &rec.RecordedAt, &rec.IsProcessed, &rec.IsArchived,
		&rec.Language, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.RecordedByName, &rec.RecordedByEmail, &rec.StudyPatientName,
		&rec.StudyAccessionNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Recording) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audio_recordings (recording_id, study_id, report_id,
			recording_type, object_key, file_name, file_size, mime_type,
			duration_seconds, transcription_status, recorded_by, language, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.StudyID, rec.ReportID, rec.RecordingType, rec.ObjectKey,
		rec.FileName, rec.FileSize, rec.MimeType, rec.DurationSeconds,
		rec.TranscriptionStatus, rec.RecordedBy, rec.Language, rec.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Recording, error) {
	return scanRecording(r.pool.QueryRow(ctx,
		`SELECT `+recordingCols+` FROM audio_recordings WHERE recording_id = $1`, id))
}

func (r *repoPG) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return scanRecordingWithDetails(r.pool.QueryRow(ctx,
		recordingJoinQuery+` WHERE ar.recording_id = $1`, id))
}

func (r *repoPG) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		recordingJoinQuery+` WHERE ar.study_id = $1 ORDER BY ar.recorded_at DESC`,
		studyID)
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.StudyID != nil {
		add("ar.study_id = $%d", *f.StudyID)
	}
	if f.ReportID != nil {
		add("ar.report_id = $%d", *f.ReportID)
	}
	if f.RecordingType != "" {
		add("ar.recording_type = $%d", f.RecordingType)
	}
	if f.RecordedBy != nil {
		add("ar.recorded_by = $%d", *f.RecordedBy)
	}
	if f.TranscriptionStatus != "" {
		add("ar.transcription_status = $%d", f.TranscriptionStatus)
	}
	if f.IsProcessed != nil {
		add("ar.is_processed = $%d", *f.IsProcessed)
	}
	if f.IsArchived != nil {
		add("ar.is_archived = $%d", *f.IsArchived)
	}
	if f.Language != "" {
		add("ar.language = $%d", f.Language)
	}
	if f.RecordedFrom != nil {
		add("ar.recorded_at >= $%d", *f.RecordedFrom)
	}
	if f.RecordedTo != nil {
		add("ar.recorded_at <= $%d", *f.RecordedTo)
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error) {
	where, args := f.where()

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audio_recordings ar WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"%s WHERE %s ORDER BY ar.recorded_at DESC LIMIT $%d OFFSET $%d",
		recordingJoinQuery, where, len(args)+1, len(args)+2)
	items, err := r.queryJoined(ctx, query, append(args, limit, offset)...)
	return items, total, err
}

func (r *repoPG) ListPendingTranscription(ctx context.Context) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		recordingJoinQuery+` WHERE ar.transcription_status = $1 AND NOT ar.is_archived
		ORDER BY ar.recorded_at ASC`, TranscriptionPending)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("audio_recordings").
		SetRaw("updated_at", "now()")
	if in.RecordingType != nil {
		b.Set("recording_type", *in.RecordingType)
	}
	if in.DurationSeconds != nil {
		b.Set("duration_seconds", *in.DurationSeconds)
	}
	if in.Language != nil {
		b.Set("language", *in.Language)
	}
	if in.Notes != nil {
		b.Set("notes", *in.Notes)
	}
	sql, args := b.Where("recording_id", id)
	return r.exec(ctx, sql, args...)
}

func (r *repoPG) SetTranscriptionStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.exec(ctx, `
		UPDATE audio_recordings SET transcription_status = $2, updated_at = now()
		WHERE recording_id = $1`, id, status)
}

func (r *repoPG) SetTranscription(ctx context.Context, id uuid.UUID, text string) error {
	return r.exec(ctx, `
		UPDATE audio_recordings
		SET transcription = $2, transcription_status = $3, is_processed = TRUE,
			updated_at = now()
		WHERE recording_id = $1`, id, text, TranscriptionCompleted)
}

func (r *repoPG) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	return r.exec(ctx, `
		UPDATE audio_recordings SET is_archived = $2, updated_at = now()
		WHERE recording_id = $1`, id, archived)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM audio_recordings WHERE recording_id = $1`, id)
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{ByType: make(map[string]int)}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE transcription_status = 'pending'),
			COUNT(*) FILTER (WHERE transcription_status = 'processing'),
			COUNT(*) FILTER (WHERE transcription_status = 'completed'),
			COUNT(*) FILTER (WHERE transcription_status = 'failed'),
			COUNT(*) FILTER (WHERE is_archived),
			COALESCE(SUM(duration_seconds), 0),
			COALESCE(SUM(file_size), 0)
		FROM audio_recordings`).Scan(&stats.Total, &stats.Pending,
		&stats.Processing, &stats.Completed, &stats.Failed, &stats.Archived,
		&stats.TotalDurationSeconds, &stats.TotalSizeBytes)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT recording_type, COUNT(*) FROM audio_recordings GROUP BY recording_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var recordingType string
		var count int
		if err := rows.Scan(&recordingType, &count); err != nil {
			return nil, err
		}
		stats.ByType[recordingType] = count
	}
	return stats, rows.Err()
}

func (r *repoPG) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) queryJoined(ctx context.Context, query string, args ...interface{}) ([]*WithDetails, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*WithDetails
	for rows.Next() {
		item, err := scanRecordingWithDetails(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
