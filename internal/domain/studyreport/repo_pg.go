package studyreport

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

const reportCols = `report_id, study_id, report_type, report_status, report_text,
	findings, impression, recommendations, storage_path, radiologist_id,
	reviewer_id, reported_at, submitted_at, approved_at, version, is_final,
	is_signed, signature, notes, created_at, updated_at`

const reportJoinQuery = `
	SELECT sr.report_id, sr.study_id, sr.report_type, sr.report_status,
		sr.report_text, sr.findings, sr.impression, sr.recommendations,
		sr.storage_path, sr.radiologist_id, sr.reviewer_id, sr.reported_at,
		sr.submitted_at, sr.approved_at, sr.version, sr.is_final, sr.is_signed,
		sr.signature, sr.notes, sr.created_at, sr.updated_at,
		u1.first_name || ' ' || u1.last_name, u1.email,
		u2.first_name || ' ' || u2.last_name, u2.email,
		s.patient_name, s.accession_number, s.study_instance_uid
	FROM study_reports sr
	LEFT JOIN users u1 ON u1.id = sr.radiologist_id
	LEFT JOIN users u2 ON u2.id = sr.reviewer_id
	LEFT JOIN studies s ON s.study_id = sr.study_id`

func scanReport(row pgx.Row) (*Report, error) {
	var rpt Report
	err := row.Scan(&rpt.ID, &rpt.StudyID, &rpt.Type, &rpt.Status, &rpt.ReportText,
		&rpt.Findings, &rpt.Impression, &rpt.Recommendations, &rpt.StoragePath,
		&rpt.RadiologistID, &rpt.ReviewerID, &rpt.ReportedAt, &rpt.SubmittedAt,
		&rpt.ApprovedAt, &rpt.Version, &rpt.IsFinal, &rpt.IsSigned,
		&rpt.Signature, &rpt.Notes, &rpt.CreatedAt, &rpt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rpt, err
}

func scanReportWithDetails(row pgx.Row) (*WithDetails, error) {
	var rpt WithDetails
	err := row.Scan(&rpt.ID, &rpt.StudyID, &rpt.Type, &rpt.Status, &rpt.ReportText,
		&rpt.Findings, &rpt.Impression, &rpt.Recommendations, &rpt.StoragePath,
		&rpt.RadiologistID, &rpt.ReviewerID, &rpt.ReportedAt, &rpt.SubmittedAt,
		&rpt.ApprovedAt, &rpt.Version, &rpt.IsFinal, &rpt.IsSigned,
		&rpt.Signature, &rpt.Notes, &rpt.CreatedAt, &rpt.UpdatedAt,
		&rpt.RadiologistName, &rpt.RadiologistEmail, &rpt.ReviewerName,
		&rpt.ReviewerEmail, &rpt.StudyPatientName, &rpt.StudyAccessionNumber,
		&rpt.StudyInstanceUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rpt, err
}

// Create inserts the report with the next version number for its study.
func (r *repoPG) Create(ctx context.Context, rpt *Report) error {
	rpt.ID = uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO study_reports (report_id, study_id, report_type,
			report_status, report_text, findings, impression, recommendations,
			radiologist_id, notes, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			COALESCE((SELECT MAX(version) + 1 FROM study_reports WHERE study_id = $2), 1))
		RETURNING version, reported_at`,
		rpt.ID, rpt.StudyID, rpt.Type, rpt.Status, rpt.ReportText, rpt.Findings,
		rpt.Impression, rpt.Recommendations, rpt.RadiologistID, rpt.Notes)
	return row.Scan(&rpt.Version, &rpt.ReportedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return scanReport(r.pool.QueryRow(ctx,
		`SELECT `+reportCols+` FROM study_reports WHERE report_id = $1`, id))
}

func (r *repoPG) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return scanReportWithDetails(r.pool.QueryRow(ctx,
		reportJoinQuery+` WHERE sr.report_id = $1`, id))
}

func (r *repoPG) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		reportJoinQuery+` WHERE sr.study_id = $1 ORDER BY sr.version DESC, sr.created_at DESC`,
		studyID)
}

func (r *repoPG) GetLatestByStudy(ctx context.Context, studyID uuid.UUID) (*WithDetails, error) {
	return scanReportWithDetails(r.pool.QueryRow(ctx,
		reportJoinQuery+` WHERE sr.study_id = $1
		ORDER BY sr.version DESC, sr.created_at DESC LIMIT 1`, studyID))
}

func (r *repoPG) GetFinalByStudy(ctx context.Context, studyID uuid.UUID) (*WithDetails, error) {
	return scanReportWithDetails(r.pool.QueryRow(ctx,
		reportJoinQuery+` WHERE sr.study_id = $1 AND sr.is_final
		ORDER BY sr.version DESC LIMIT 1`, studyID))
}

func (r *repoPG) ListByRadiologist(ctx context.Context, radiologistID uuid.UUID) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		reportJoinQuery+` WHERE sr.radiologist_id = $1 ORDER BY sr.reported_at DESC`,
		radiologistID)
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.StudyID != nil {
		add("sr.study_id = $%d", *f.StudyID)
	}
	if f.Type != "" {
		add("sr.report_type = $%d", f.Type)
	}
	if f.Status != "" {
		add("sr.report_status = $%d", f.Status)
	}
	if f.RadiologistID != nil {
		add("sr.radiologist_id = $%d", *f.RadiologistID)
	}
	if f.ReviewerID != nil {
		add("sr.reviewer_id = $%d", *f.ReviewerID)
	}
	if f.IsFinal != nil {
		add("sr.is_final = $%d", *f.IsFinal)
	}
	if f.IsSigned != nil {
		add("sr.is_signed = $%d", *f.IsSigned)
	}
	if f.ReportedFrom != nil {
		add("sr.reported_at >= $%d", *f.ReportedFrom)
	}
	if f.ReportedTo != nil {
		add("sr.reported_at <= $%d", *f.ReportedTo)
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error) {
	where, args := f.where()

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM study_reports sr WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY sr.reported_at DESC LIMIT $%d OFFSET $%d",
		reportJoinQuery, where, len(args)+1, len(args)+2)
	items, err := r.queryJoined(ctx, query, append(args, limit, offset)...)
	return items, total, err
}

func (r *repoPG) ListDrafts(ctx context.Context, radiologistID *uuid.UUID) ([]*WithDetails, error) {
	if radiologistID != nil {
		return r.queryJoined(ctx,
			reportJoinQuery+` WHERE sr.report_status = $1 AND sr.radiologist_id = $2
			ORDER BY sr.updated_at DESC`, StatusDraft, *radiologistID)
	}
	return r.queryJoined(ctx,
		reportJoinQuery+` WHERE sr.report_status = $1 ORDER BY sr.updated_at DESC`,
		StatusDraft)
}

func (r *repoPG) ListPendingApproval(ctx context.Context) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		reportJoinQuery+` WHERE sr.report_status = $1 ORDER BY sr.submitted_at ASC`,
		StatusSubmitted)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("study_reports").
		SetRaw("updated_at", "now()")
	if in.Type != nil {
		b.Set("report_type", *in.Type)
	}
	if in.ReportText != nil {
		b.Set("report_text", *in.ReportText)
	}
	if in.Findings != nil {
		b.Set("findings", *in.Findings)
	}
	if in.Impression != nil {
		b.Set("impression", *in.Impression)
	}
	if in.Recommendations != nil {
		b.Set("recommendations", *in.Recommendations)
	}
	if in.Notes != nil {
		b.Set("notes", *in.Notes)
	}
	sql, args := b.Where("report_id", id)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Submit(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE study_reports
		SET report_status = $2, submitted_at = now(), updated_at = now()
		WHERE report_id = $1`, id, StatusSubmitted)
}

func (r *repoPG) Approve(ctx context.Context, id, reviewerID uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE study_reports
		SET report_status = $2, reviewer_id = $3, approved_at = now(), updated_at = now()
		WHERE report_id = $1`, id, StatusApproved, reviewerID)
}

func (r *repoPG) Reject(ctx context.Context, id, reviewerID uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE study_reports
		SET report_status = $2, reviewer_id = $3, updated_at = now()
		WHERE report_id = $1`, id, StatusRejected, reviewerID)
}

func (r *repoPG) MarkFinal(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE study_reports SET is_final = TRUE, updated_at = now()
		WHERE report_id = $1`, id)
}

func (r *repoPG) Sign(ctx context.Context, id uuid.UUID, signature string) error {
	return r.exec(ctx, `
		UPDATE study_reports
		SET is_signed = TRUE, signature = $2, updated_at = now()
		WHERE report_id = $1`, id, signature)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM study_reports WHERE report_id = $1`, id)
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE report_status = 'draft'),
			COUNT(*) FILTER (WHERE report_status = 'submitted'),
			COUNT(*) FILTER (WHERE report_status = 'approved'),
			COUNT(*) FILTER (WHERE report_status = 'rejected'),
			COUNT(*) FILTER (WHERE is_signed)
		FROM study_reports`).Scan(&stats.Total, &stats.Draft, &stats.Submitted,
		&stats.Approved, &stats.Rejected, &stats.Signed)
	if err != nil {
		return nil, err
	}

	stats.ByType = make(map[string]int)
	rows, err := r.pool.Query(ctx, `
		SELECT report_type, COUNT(*) FROM study_reports GROUP BY report_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var reportType string
		var count int
		if err := rows.Scan(&reportType, &count); err != nil {
			return nil, err
		}
		stats.ByType[reportType] = count
	}
	return &stats, rows.Err()
}

func (r *repoPG) RadiologistStatistics(ctx context.Context, radiologistID uuid.UUID) (*RadiologistStatistics, error) {
	var stats RadiologistStatistics
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE report_status = 'draft'),
			COUNT(*) FILTER (WHERE report_status = 'submitted'),
			COUNT(*) FILTER (WHERE report_status = 'approved'),
			COUNT(*) FILTER (WHERE is_final),
			COUNT(*) FILTER (WHERE is_signed)
		FROM study_reports
		WHERE radiologist_id = $1`, radiologistID).Scan(&stats.Total,
		&stats.Draft, &stats.Submitted, &stats.Approved, &stats.Final, &stats.Signed)
	if err != nil {
		return nil, err
	}
	return &stats, nil
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
		item, err := scanReportWithDetails(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
