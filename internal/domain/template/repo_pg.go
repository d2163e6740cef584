package template

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

const templateCols = `template_id, template_name, template_code, category,
	modality, body_part, content, description, language, tags, is_active,
	is_default, usage_count, created_by, created_at, updated_at`

const templateJoinQuery = `
	SELECT rt.template_id, rt.template_name, rt.template_code, rt.category,
		rt.modality, rt.body_part, rt.content, rt.description, rt.language,
		rt.tags, rt.is_active, rt.is_default, rt.usage_count, rt.created_by,
		rt.created_at, rt.updated_at,
		u.first_name || ' ' || u.last_name, u.email
	FROM report_templates rt
	LEFT JOIN users u ON u.id = rt.created_by`

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	err := row.Scan(&t.ID, &t.Name, &t.Code, &t.Category, &t.Modality,
		&t.BodyPart, &t.Content, &t.Description, &t.Language, &t.Tags,
		&t.IsActive, &t.IsDefault, &t.UsageCount, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func scanTemplateWithCreator(row pgx.Row) (*WithCreator, error) {
	var t WithCreator
	err := row.Scan(&t.ID, &t.Name, &t.Code, &t.Category, &t.Modality,
		&t.BodyPart, &t.Content, &t.Description, &t.Language, &t.Tags,
		&t.IsActive, &t.IsDefault, &t.UsageCount, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatorName, &t.CreatorEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Template) error {
	t.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report_templates (template_id, template_name, template_code,
			category, modality, body_part, content, description, language, tags,
			is_active, is_default, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		t.ID, t.Name, t.Code, t.Category, t.Modality, t.BodyPart, t.Content,
		t.Description, t.Language, t.Tags, t.IsActive, t.IsDefault, t.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateCols+` FROM report_templates WHERE template_id = $1`, id))
}

func (r *repoPG) GetByIDWithCreator(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	return scanTemplateWithCreator(r.pool.QueryRow(ctx,
		templateJoinQuery+` WHERE rt.template_id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateCols+` FROM report_templates WHERE template_code = $1`, code))
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("rt.category = $%d", f.Category)
	}
	if f.Modality != "" {
		add("rt.modality = $%d", f.Modality)
	}
	if f.BodyPart != "" {
		add("rt.body_part = $%d", f.BodyPart)
	}
	if f.Language != "" {
		add("rt.language = $%d", f.Language)
	}
	if f.IsActive != nil {
		add("rt.is_active = $%d", *f.IsActive)
	}
	if f.IsDefault != nil {
		add("rt.is_default = $%d", *f.IsDefault)
	}
	if f.CreatedBy != nil {
		add("rt.created_by = $%d", *f.CreatedBy)
	}
	if len(f.Tags) > 0 {
		add("rt.tags && $%d", f.Tags)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(rt.template_name ILIKE $%d OR rt.template_code ILIKE $%d OR rt.content ILIKE $%d)",
			n, n, n))
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithCreator, int, error) {
	where, args := f.where()

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM report_templates rt WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"%s WHERE %s ORDER BY rt.usage_count DESC, rt.created_at DESC LIMIT $%d OFFSET $%d",
		templateJoinQuery, where, len(args)+1, len(args)+2)
	items, err := r.queryJoined(ctx, query, append(args, limit, offset)...)
	return items, total, err
}

func (r *repoPG) ListDefaults(ctx context.Context) ([]*WithCreator, error) {
	return r.queryJoined(ctx,
		templateJoinQuery+` WHERE rt.is_default AND rt.is_active
		ORDER BY rt.modality, rt.category`)
}

func (r *repoPG) ListMostUsed(ctx context.Context, limit int) ([]*WithCreator, error) {
	return r.queryJoined(ctx,
		templateJoinQuery+` WHERE rt.is_active
		ORDER BY rt.usage_count DESC LIMIT $1`, limit)
}

func (r *repoPG) ListRecent(ctx context.Context, limit int) ([]*WithCreator, error) {
	return r.queryJoined(ctx,
		templateJoinQuery+` ORDER BY rt.created_at DESC LIMIT $1`, limit)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("report_templates").
		SetRaw("updated_at", "now()")
	if in.Name != nil {
		b.Set("template_name", *in.Name)
	}
	if in.Code != nil {
		b.Set("template_code", *in.Code)
	}
	if in.Category != nil {
		b.Set("category", *in.Category)
	}
	if in.Modality != nil {
		b.Set("modality", *in.Modality)
	}
	if in.BodyPart != nil {
		b.Set("body_part", *in.BodyPart)
	}
	if in.Content != nil {
		b.Set("content", *in.Content)
	}
	if in.Description != nil {
		b.Set("description", *in.Description)
	}
	if in.Language != nil {
		b.Set("language", *in.Language)
	}
	if in.Tags != nil {
		b.Set("tags", in.Tags)
	}
	if in.IsActive != nil {
		b.Set("is_active", *in.IsActive)
	}
	sql, args := b.Where("template_id", id)
	return r.exec(ctx, sql, args...)
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.exec(ctx, `
		UPDATE report_templates SET is_active = $2, updated_at = now()
		WHERE template_id = $1`, id, active)
}

// SetDefault makes the template the single default for its modality and
// category in one statement.
func (r *repoPG) SetDefault(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE report_templates
		SET is_default = (template_id = $1), updated_at = now()
		WHERE (modality, category) = (
			SELECT modality, category FROM report_templates WHERE template_id = $1)`, id)
}

func (r *repoPG) UnsetDefault(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE report_templates SET is_default = FALSE, updated_at = now()
		WHERE template_id = $1`, id)
}

func (r *repoPG) RecordUsage(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE report_templates SET usage_count = usage_count + 1
		WHERE template_id = $1`, id)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM report_templates WHERE template_id = $1`, id)
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByCategory: make(map[string]int),
		ByModality: make(map[string]int),
	}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COALESCE(SUM(usage_count), 0)
		FROM report_templates`).Scan(&stats.Total, &stats.Active, &stats.TotalUsage)
	if err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "category", stats.ByCategory); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "modality", stats.ByModality); err != nil {
		return nil, err
	}

	if stats.MostUsed, err = r.ListMostUsed(ctx, 10); err != nil {
		return nil, err
	}
	if stats.Recent, err = r.ListRecent(ctx, 10); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repoPG) groupCount(ctx context.Context, column string, dest map[string]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+column+`, COUNT(*) FROM report_templates GROUP BY `+column)
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
		item, err := scanTemplateWithCreator(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
