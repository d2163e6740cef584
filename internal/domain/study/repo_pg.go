package study

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

const studyCols = `study_id, study_instance_uid, accession_number, patient_id,
	patient_name, patient_birth_date, patient_sex, study_date, study_time,
	study_description, modality, institution_id, device_id, referring_physician,
	performing_physician, study_status, priority, assigned_to, num_images,
	num_series, is_urgent, created_at, updated_at`

const studyJoinQuery = `
	SELECT s.study_id, s.study_instance_uid, s.accession_number, s.patient_id,
		s.patient_name, s.patient_birth_date, s.patient_sex, s.study_date,
		s.study_time, s.study_description, s.modality, s.institution_id,
		s.device_id, s.referring_physician, s.performing_physician,
		s.study_status, s.priority, s.assigned_to, s.num_images, s.num_series,
		s.is_urgent, s.created_at, s.updated_at,
		i.institution_name, i.institution_code,
		d.device_name, d.device_code,
		u.first_name || ' ' || u.last_name, u.email
	FROM studies s
	LEFT JOIN institutions i ON i.institution_id = s.institution_id
	LEFT JOIN devices d ON d.device_id = s.device_id
	LEFT JOIN users u ON u.id = s.assigned_to`

func scanStudy(row pgx.Row) (*Study, error) {
	var s Study
	err := row.Scan(&s.ID, &s.StudyInstanceUID, &s.AccessionNumber, &s.PatientID,
		&s.PatientName, &s.PatientBirthDate, &s.PatientSex, &s.StudyDate,
		&s.StudyTime, &s.StudyDescription, &s.Modality, &s.InstitutionID,
		&s.DeviceID, &s.ReferringPhysician, &s.PerformingPhysician, &s.Status,
		&s.Priority, &s.AssignedTo, &s.NumImages, &s.NumSeries, &s.IsUrgent,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func scanStudyWithDetails(row pgx.Row) (*WithDetails, error) {
	var s WithDetails
	err := row.Scan(&s.ID, &s.StudyInstanceUID, &s.AccessionNumber, &s.PatientID,
		&s.PatientName, &s.PatientBirthDate, &s.PatientSex, &s.StudyDate,
		&s.StudyTime, &s.StudyDescription, &s.Modality, &s.InstitutionID,
		&s.DeviceID, &s.ReferringPhysician, &s.PerformingPhysician, &s.Status,
		&s.Priority, &s.AssignedTo, &s.NumImages, &s.NumSeries, &s.IsUrgent,
		&s.CreatedAt, &s.UpdatedAt,
		&s.InstitutionName, &s.InstitutionCode, &s.DeviceName, &s.DeviceCode,
		&s.AssignedRadiologistName, &s.AssignedRadiologistMail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Study) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO studies (study_id, study_instance_uid, accession_number,
			patient_id, patient_name, patient_birth_date, patient_sex, study_date,
			study_time, study_description, modality, institution_id, device_id,
			referring_physician, performing_physician, study_status, priority,
			num_images, num_series, is_urgent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		s.ID, s.StudyInstanceUID, s.AccessionNumber, s.PatientID, s.PatientName,
		s.PatientBirthDate, s.PatientSex, s.StudyDate, s.StudyTime,
		s.StudyDescription, s.Modality, s.InstitutionID, s.DeviceID,
		s.ReferringPhysician, s.PerformingPhysician, s.Status, s.Priority,
		s.NumImages, s.NumSeries, s.IsUrgent)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Study, error) {
	return scanStudy(r.pool.QueryRow(ctx,
		`SELECT `+studyCols+` FROM studies WHERE study_id = $1`, id))
}

func (r *repoPG) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*WithDetails, error) {
	return scanStudyWithDetails(r.pool.QueryRow(ctx,
		studyJoinQuery+` WHERE s.study_id = $1`, id))
}

func (r *repoPG) GetByStudyInstanceUID(ctx context.Context, uid string) (*Study, error) {
	return scanStudy(r.pool.QueryRow(ctx,
		`SELECT `+studyCols+` FROM studies WHERE study_instance_uid = $1`, uid))
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("s.study_status = $%d", f.Status)
	}
	if f.Priority != "" {
		add("s.priority = $%d", f.Priority)
	}
	if f.Modality != "" {
		add("s.modality = $%d", f.Modality)
	}
	if f.InstitutionID != nil {
		add("s.institution_id = $%d", *f.InstitutionID)
	}
	if f.DeviceID != nil {
		add("s.device_id = $%d", *f.DeviceID)
	}
	if f.AssignedTo != nil {
		add("s.assigned_to = $%d", *f.AssignedTo)
	}
	if f.PatientID != "" {
		add("s.patient_id = $%d", f.PatientID)
	}
	if f.DateFrom != nil {
		add("s.study_date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("s.study_date <= $%d", *f.DateTo)
	}
	if f.IsUrgent != nil {
		add("s.is_urgent = $%d", *f.IsUrgent)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(s.patient_name ILIKE $%d OR s.patient_id ILIKE $%d OR s.accession_number ILIKE $%d)", n, n, n))
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithDetails, int, error) {
	where, args := f.where()

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM studies s WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.study_date DESC, s.created_at DESC LIMIT $%d OFFSET $%d`,
		studyJoinQuery, where, len(args)+1, len(args)+2)
	items, err := r.queryJoined(ctx, query, append(args, limit, offset)...)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		studyJoinQuery+` WHERE s.patient_id = $1 ORDER BY s.study_date DESC`, patientID)
}

func (r *repoPG) ListByRadiologist(ctx context.Context, radiologistID uuid.UUID) ([]*WithDetails, error) {
	return r.queryJoined(ctx,
		studyJoinQuery+` WHERE s.assigned_to = $1 ORDER BY s.study_date DESC`, radiologistID)
}

func (r *repoPG) ListUrgentOpen(ctx context.Context) ([]*WithDetails, error) {
	return r.queryJoined(ctx, studyJoinQuery+`
		WHERE s.is_urgent = true AND s.study_status NOT IN ($1, $2)
		ORDER BY s.study_date`, StatusCompleted, StatusCancelled)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("studies")
	set := func(col string, val *string) {
		if val != nil {
			b.Set(col, *val)
		}
	}
	set("accession_number", in.AccessionNumber)
	set("patient_name", in.PatientName)
	set("patient_birth_date", in.PatientBirthDate)
	set("patient_sex", in.PatientSex)
	set("study_date", in.StudyDate)
	set("study_time", in.StudyTime)
	set("study_description", in.StudyDescription)
	set("modality", in.Modality)
	set("referring_physician", in.ReferringPhysician)
	set("performing_physician", in.PerformingPhysician)
	set("priority", in.Priority)
	if in.InstitutionID != nil {
		b.Set("institution_id", *in.InstitutionID)
	}
	if in.DeviceID != nil {
		b.Set("device_id", *in.DeviceID)
	}
	if in.NumImages != nil {
		b.Set("num_images", *in.NumImages)
	}
	if in.NumSeries != nil {
		b.Set("num_series", *in.NumSeries)
	}
	if in.IsUrgent != nil {
		b.Set("is_urgent", *in.IsUrgent)
	}
	if b.Empty() {
		return nil
	}
	b.SetRaw("updated_at", "NOW()")

	sql, args := b.Where("study_id", id)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Assign(ctx context.Context, id, radiologistID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE studies
		SET assigned_to = $1, study_status = $2, updated_at = NOW()
		WHERE study_id = $3`, radiologistID, StatusAssigned, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE studies SET study_status = $1, updated_at = NOW() WHERE study_id = $2`,
		status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM studies WHERE study_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE study_status = 'pending'),
			COUNT(*) FILTER (WHERE study_status = 'assigned'),
			COUNT(*) FILTER (WHERE study_status = 'in_progress'),
			COUNT(*) FILTER (WHERE study_status = 'reported'),
			COUNT(*) FILTER (WHERE study_status = 'completed'),
			COUNT(*) FILTER (WHERE study_status = 'cancelled'),
			COUNT(*) FILTER (WHERE is_urgent)
		FROM studies`).
		Scan(&stats.Total, &stats.Pending, &stats.Assigned, &stats.InProgress,
			&stats.Reported, &stats.Completed, &stats.Cancelled, &stats.Urgent)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *repoPG) queryJoined(ctx context.Context, query string, args ...interface{}) ([]*WithDetails, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*WithDetails
	for rows.Next() {
		s, err := scanStudyWithDetails(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
