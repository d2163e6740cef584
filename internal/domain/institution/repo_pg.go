package institution

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

const institutionCols = `institution_id, institution_code, institution_name,
	institution_type, address, city, county, country, phone, email, website,
	contact_person, license_number, accreditation, is_active, created_by,
	created_at, updated_at`

func scanInstitution(row pgx.Row) (*Institution, error) {
	var i Institution
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Type, &i.Address, &i.City,
		&i.County, &i.Country, &i.Phone, &i.Email, &i.Website, &i.ContactPerson,
		&i.LicenseNumber, &i.Accreditation, &i.IsActive, &i.CreatedBy,
		&i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &i, err
}

func (r *repoPG) Create(ctx context.Context, inst *Institution) error {
	inst.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO institutions (institution_id, institution_code, institution_name,
			institution_type, address, city, county, country, phone, email, website,
			contact_person, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		inst.ID, inst.Code, inst.Name, inst.Type, inst.Address, inst.City,
		inst.County, inst.Country, inst.Phone, inst.Email, inst.Website,
		inst.ContactPerson, inst.IsActive, inst.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Institution, error) {
	return scanInstitution(r.pool.QueryRow(ctx,
		`SELECT `+institutionCols+` FROM institutions WHERE institution_id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Institution, error) {
	return scanInstitution(r.pool.QueryRow(ctx,
		`SELECT `+institutionCols+` FROM institutions WHERE institution_code = $1`, code))
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"TRUE"}
	var args []interface{}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("institution_type = $%d", len(args)))
	}
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("city = $%d", len(args)))
	}
	if f.Country != "" {
		args = append(args, f.Country)
		conds = append(conds, fmt.Sprintf("country = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(institution_name ILIKE $%d OR institution_code ILIKE $%d OR city ILIKE $%d)", n, n, n))
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*Institution, int, error) {
	where, args := f.where()

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM institutions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM institutions WHERE %s ORDER BY institution_name LIMIT $%d OFFSET $%d`,
		institutionCols, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectInstitutions(rows)
	return items, total, err
}

func (r *repoPG) ListByType(ctx context.Context, instType string) ([]*Institution, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+institutionCols+` FROM institutions
		 WHERE institution_type = $1 AND is_active = true ORDER BY institution_name`, instType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstitutions(rows)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("institutions")
	set := func(col string, val *string) {
		if val != nil {
			b.Set(col, *val)
		}
	}
	set("institution_name", in.Name)
	set("institution_type", in.Type)
	set("address", in.Address)
	set("city", in.City)
	set("country", in.Country)
	set("phone", in.Phone)
	set("email", in.Email)
	set("contact_person", in.ContactPerson)
	set("license_number", in.LicenseNumber)
	set("accreditation", in.Accreditation)
	if in.IsActive != nil {
		b.Set("is_active", *in.IsActive)
	}
	if b.Empty() {
		return nil
	}
	b.SetRaw("updated_at", "NOW()")

	sql, args := b.Where("institution_id", id)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM institutions WHERE institution_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Statistics(ctx context.Context, id uuid.UUID) (*Statistics, error) {
	var stats Statistics
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE study_status = 'pending'),
			COUNT(*) FILTER (WHERE study_status = 'completed'),
			COUNT(DISTINCT assigned_to) FILTER (WHERE assigned_to IS NOT NULL)
		FROM studies
		WHERE institution_id = $1`, id).
		Scan(&stats.TotalStudies, &stats.PendingStudies, &stats.CompletedStudies,
			&stats.TotalRadiologists)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func collectInstitutions(rows pgx.Rows) ([]*Institution, error) {
	var items []*Institution
	for rows.Next() {
		i, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
