package proctype

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

const procCols = `proc_type_id, proc_code, name, name_en, description, modality,
	body_part, category, is_emergency, is_contrast, requires_preparation,
	preparation_instructions, typical_duration, radiation_dose, price, cpt_code,
	icd_codes, tags, is_active, usage_count, created_by, created_at, updated_at`

const procJoinQuery = `
	SELECT pt.proc_type_id, pt.proc_code, pt.name, pt.name_en, pt.description,
		pt.modality, pt.body_part, pt.category, pt.is_emergency, pt.is_contrast,
		pt.requires_preparation, pt.preparation_instructions, pt.typical_duration,
		pt.radiation_dose, pt.price, pt.cpt_code, pt.icd_codes, pt.tags,
		pt.is_active, pt.usage_count, pt.created_by, pt.created_at, pt.updated_at,
		u.first_name || ' ' || u.last_name, u.email
	FROM procedure_types pt
	LEFT JOIN users u ON u.id = pt.created_by`

func scanProc(row pgx.Row) (*ProcedureType, error) {
	var pt ProcedureType
	err := row.Scan(&pt.ID, &pt.Code, &pt.Name, &pt.NameEN, &pt.Description,
		&pt.Modality, &pt.BodyPart, &pt.Category, &pt.IsEmergency, &pt.IsContrast,
		&pt.RequiresPreparation, &pt.PreparationInstructions, &pt.TypicalDuration,
		&pt.RadiationDose, &pt.Price, &pt.CPTCode, &pt.ICDCodes, &pt.Tags,
		&pt.IsActive, &pt.UsageCount, &pt.CreatedBy, &pt.CreatedAt, &pt.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &pt, err
}

func scanProcWithCreator(row pgx.Row) (*WithCreator, error) {
	var pt WithCreator
	err := row.Scan(&pt.ID, &pt.Code, &pt.Name, &pt.NameEN, &pt.Description,
		&pt.Modality, &pt.BodyPart, &pt.Category, &pt.IsEmergency, &pt.IsContrast,
		&pt.RequiresPreparation, &pt.PreparationInstructions, &pt.TypicalDuration,
		&pt.RadiationDose, &pt.Price, &pt.CPTCode, &pt.ICDCodes, &pt.Tags,
		&pt.IsActive, &pt.UsageCount, &pt.CreatedBy, &pt.CreatedAt, &pt.UpdatedAt,
		&pt.CreatorName, &pt.CreatorEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &pt, err
}

func (r *repoPG) Create(ctx context.Context, pt *ProcedureType) error {
	pt.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO procedure_types (proc_type_id, proc_code, name, name_en,
			description, modality, body_part, category, is_emergency, is_contrast,
			requires_preparation, preparation_instructions, typical_duration,
			radiation_dose, price, cpt_code, icd_codes, tags, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		pt.ID, pt.Code, pt.Name, pt.NameEN, pt.Description, pt.Modality,
		pt.BodyPart, pt.Category, pt.IsEmergency, pt.IsContrast,
		pt.RequiresPreparation, pt.PreparationInstructions, pt.TypicalDuration,
		pt.RadiationDose, pt.Price, pt.CPTCode, pt.ICDCodes, pt.Tags,
		pt.IsActive, pt.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ProcedureType, error) {
	return scanProc(r.pool.QueryRow(ctx,
		`SELECT `+procCols+` FROM procedure_types WHERE proc_type_id = $1`, id))
}

func (r *repoPG) GetByIDWithCreator(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	return scanProcWithCreator(r.pool.QueryRow(ctx,
		procJoinQuery+` WHERE pt.proc_type_id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*ProcedureType, error) {
	return scanProc(r.pool.QueryRow(ctx,
		`SELECT `+procCols+` FROM procedure_types WHERE proc_code = $1`, code))
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Modality != "" {
		add("pt.modality = $%d", f.Modality)
	}
	if f.BodyPart != "" {
		add("pt.body_part = $%d", f.BodyPart)
	}
	if f.Category != "" {
		add("pt.category = $%d", f.Category)
	}
	if f.IsEmergency != nil {
		add("pt.is_emergency = $%d", *f.IsEmergency)
	}
	if f.IsContrast != nil {
		add("pt.is_contrast = $%d", *f.IsContrast)
	}
	if f.RequiresPreparation != nil {
		add("pt.requires_preparation = $%d", *f.RequiresPreparation)
	}
	if f.RadiationDose != "" {
		add("pt.radiation_dose = $%d", f.RadiationDose)
	}
	if f.IsActive != nil {
		add("pt.is_active = $%d", *f.IsActive)
	}
	if f.MinPrice != nil {
		add("pt.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("pt.price <= $%d", *f.MaxPrice)
	}
	if len(f.Tags) > 0 {
		add("pt.tags && $%d", f.Tags)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(pt.name ILIKE $%d OR pt.proc_code ILIKE $%d OR pt.name_en ILIKE $%d)",
			n, n, n))
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithCreator, int, error) {
	where, args := f.where()

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM procedure_types pt WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"%s WHERE %s ORDER BY pt.usage_count DESC, pt.name LIMIT $%d OFFSET $%d",
		procJoinQuery, where, len(args)+1, len(args)+2)
	items, err := r.queryJoined(ctx, query, append(args, limit, offset)...)
	return items, total, err
}

func (r *repoPG) ListEmergency(ctx context.Context) ([]*WithCreator, error) {
	return r.queryJoined(ctx,
		procJoinQuery+` WHERE pt.is_emergency AND pt.is_active
		ORDER BY pt.usage_count DESC`)
}

func (r *repoPG) ListMostUsed(ctx context.Context, limit int) ([]*WithCreator, error) {
	return r.queryJoined(ctx,
		procJoinQuery+` WHERE pt.is_active
		ORDER BY pt.usage_count DESC LIMIT $1`, limit)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("procedure_types").
		SetRaw("updated_at", "now()")
	if in.Code != nil {
		b.Set("proc_code", *in.Code)
	}
	if in.Name != nil {
		b.Set("name", *in.Name)
	}
	if in.NameEN != nil {
		b.Set("name_en", *in.NameEN)
	}
	if in.Description != nil {
		b.Set("description", *in.Description)
	}
	if in.Modality != nil {
		b.Set("modality", *in.Modality)
	}
	if in.BodyPart != nil {
		b.Set("body_part", *in.BodyPart)
	}
	if in.Category != nil {
		b.Set("category", *in.Category)
	}
	if in.IsEmergency != nil {
		b.Set("is_emergency", *in.IsEmergency)
	}
	if in.IsContrast != nil {
		b.Set("is_contrast", *in.IsContrast)
	}
	if in.RequiresPreparation != nil {
		b.Set("requires_preparation", *in.RequiresPreparation)
	}
	if in.PreparationInstructions != nil {
		b.Set("preparation_instructions", *in.PreparationInstructions)
	}
	if in.TypicalDuration != nil {
		b.Set("typical_duration", *in.TypicalDuration)
	}
	if in.RadiationDose != nil {
		b.Set("radiation_dose", *in.RadiationDose)
	}
	if in.Price != nil {
		b.Set("price", *in.Price)
	}
	if in.CPTCode != nil {
		b.Set("cpt_code", *in.CPTCode)
	}
	if in.ICDCodes != nil {
		b.Set("icd_codes", in.ICDCodes)
	}
	if in.Tags != nil {
		b.Set("tags", in.Tags)
	}
	if in.IsActive != nil {
		b.Set("is_active", *in.IsActive)
	}
	sql, args := b.Where("proc_type_id", id)
	return r.exec(ctx, sql, args...)
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.exec(ctx, `
		UPDATE procedure_types SET is_active = $2, updated_at = now()
		WHERE proc_type_id = $1`, id, active)
}

func (r *repoPG) RecordUsage(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE procedure_types SET usage_count = usage_count + 1
		WHERE proc_type_id = $1`, id)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM procedure_types WHERE proc_type_id = $1`, id)
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByModality: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_emergency),
			COUNT(*) FILTER (WHERE is_contrast),
			COALESCE(AVG(typical_duration), 0),
			COALESCE(SUM(price * usage_count), 0)
		FROM procedure_types`).Scan(&stats.Total, &stats.EmergencyCount,
		&stats.ContrastCount, &stats.AverageDuration, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "modality", stats.ByModality); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "category", stats.ByCategory); err != nil {
		return nil, err
	}
	if stats.MostUsed, err = r.ListMostUsed(ctx, 10); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repoPG) groupCount(ctx context.Context, column string, dest map[string]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+column+`, COUNT(*) FROM procedure_types GROUP BY `+column)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
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

func (r *repoPG) queryJoined(ctx context.Context, query string, args ...interface{}) ([]*WithCreator, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*WithCreator
	for rows.Next() {
		item, err := scanProcWithCreator(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
