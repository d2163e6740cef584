package usercompany

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radbridge/radbridge/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const affiliationCols = `id, user_id, company_id, role_in_company, department,
	is_active, start_date, end_date, created_at, updated_at`

const detailQuery = `
	SELECT uc.id, uc.user_id, uc.company_id, uc.role_in_company, uc.department,
		uc.is_active, uc.start_date, uc.end_date, uc.created_at, uc.updated_at,
		u.first_name, u.last_name, u.email,
		c.company_name, c.company_code, c.status
	FROM user_companies uc
	JOIN users u ON u.id = uc.user_id
	JOIN companies c ON c.company_id = uc.company_id`

func scanAffiliation(row pgx.Row) (*Affiliation, error) {
	var a Affiliation
	err := row.Scan(&a.ID, &a.UserID, &a.CompanyID, &a.RoleInCompany, &a.Department,
		&a.IsActive, &a.StartDate, &a.EndDate, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Affiliation) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_companies (id, user_id, company_id, role_in_company,
			department, is_active, start_date)
		VALUES ($1,$2,$3,$4,$5,true,$6)`,
		a.ID, a.UserID, a.CompanyID, a.RoleInCompany, a.Department, a.StartDate)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Affiliation, error) {
	return scanAffiliation(r.pool.QueryRow(ctx,
		`SELECT `+affiliationCols+` FROM user_companies WHERE id = $1`, id))
}

func (r *repoPG) GetByUserAndCompany(ctx context.Context, userID, companyID uuid.UUID) (*Affiliation, error) {
	return scanAffiliation(r.pool.QueryRow(ctx,
		`SELECT `+affiliationCols+` FROM user_companies WHERE user_id = $1 AND company_id = $2`,
		userID, companyID))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_companies
		SET is_active = false, end_date = CURRENT_DATE, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Activate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_companies
		SET is_active = true, end_date = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("user_companies")
	if in.RoleInCompany != nil {
		b.Set("role_in_company", *in.RoleInCompany)
	}
	if in.Department != nil {
		b.Set("department", *in.Department)
	}
	if b.Empty() {
		return nil
	}
	b.SetRaw("updated_at", "NOW()")

	sql, args := b.Where("id", id)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListForUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*Detail, error) {
	query := detailQuery + ` WHERE uc.user_id = $1`
	if activeOnly {
		query += ` AND uc.is_active = true`
	}
	query += ` ORDER BY uc.is_active DESC, uc.created_at DESC`
	return r.queryDetails(ctx, query, userID)
}

func (r *repoPG) ListForCompany(ctx context.Context, companyID uuid.UUID, activeOnly bool) ([]*Detail, error) {
	query := detailQuery + ` WHERE uc.company_id = $1`
	if activeOnly {
		query += ` AND uc.is_active = true`
	}
	query += ` ORDER BY uc.is_active DESC, uc.created_at DESC`
	return r.queryDetails(ctx, query, companyID)
}

func (r *repoPG) ListManagers(ctx context.Context, companyID uuid.UUID) ([]*Detail, error) {
	query := detailQuery + `
		WHERE uc.company_id = $1 AND uc.role_in_company = $2 AND uc.is_active = true
		ORDER BY uc.created_at`
	return r.queryDetails(ctx, query, companyID, RoleManager)
}

func (r *repoPG) queryDetails(ctx context.Context, query string, args ...interface{}) ([]*Detail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.UserID, &d.CompanyID, &d.RoleInCompany,
			&d.Department, &d.IsActive, &d.StartDate, &d.EndDate, &d.CreatedAt,
			&d.UpdatedAt, &d.UserFirstName, &d.UserLastName, &d.UserEmail,
			&d.CompanyName, &d.CompanyCode, &d.CompanyStatus); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}
