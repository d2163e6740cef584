package user

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

const userCols = `id, login_id, company_id, first_name, last_name, email, phone,
	license_number, specialization, hospital_name, department, profile_image_url,
	created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.LoginID, &u.CompanyID, &u.FirstName, &u.LastName,
		&u.Email, &u.Phone, &u.LicenseNumber, &u.Specialization, &u.HospitalName,
		&u.Department, &u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, login_id, company_id, first_name, last_name, email,
			phone, license_number, specialization, hospital_name, department)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		u.ID, u.LoginID, u.CompanyID, u.FirstName, u.LastName, u.Email,
		u.Phone, u.LicenseNumber, u.Specialization, u.HospitalName, u.Department)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByLoginID(ctx context.Context, loginID uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE login_id = $1`, loginID))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *repoPG) GetProfileByLoginID(ctx context.Context, loginID uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.login_id, u.company_id, u.first_name, u.last_name, u.email,
			u.phone, u.license_number, u.specialization, u.hospital_name,
			u.department, u.profile_image_url, u.created_at, u.updated_at,
			l.username, l.role, l.is_active, l.last_login_at,
			c.company_name, c.company_code
		FROM users u
		JOIN logins l ON l.id = u.login_id
		LEFT JOIN companies c ON c.company_id = u.company_id
		WHERE u.login_id = $1`, loginID).
		Scan(&p.ID, &p.LoginID, &p.CompanyID, &p.FirstName, &p.LastName, &p.Email,
			&p.Phone, &p.LicenseNumber, &p.Specialization, &p.HospitalName,
			&p.Department, &p.ProfileImageURL, &p.CreatedAt, &p.UpdatedAt,
			&p.Username, &p.Role, &p.IsActive, &p.LastLoginAt,
			&p.CompanyName, &p.CompanyCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("users")
	if in.FirstName != nil {
		b.Set("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		b.Set("last_name", *in.LastName)
	}
	if in.Email != nil {
		b.Set("email", *in.Email)
	}
	if in.Phone != nil {
		b.Set("phone", *in.Phone)
	}
	if in.CompanyID != nil {
		b.Set("company_id", *in.CompanyID)
	}
	if in.LicenseNumber != nil {
		b.Set("license_number", *in.LicenseNumber)
	}
	if in.Specialization != nil {
		b.Set("specialization", *in.Specialization)
	}
	if in.HospitalName != nil {
		b.Set("hospital_name", *in.HospitalName)
	}
	if in.Department != nil {
		b.Set("department", *in.Department)
	}
	if in.ProfileImageURL != nil {
		b.Set("profile_image_url", *in.ProfileImageURL)
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

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectUsers(rows, total)
}

func (r *repoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+` FROM users WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectUsers(rows, total)
}

func collectUsers(rows pgx.Rows, total int) ([]*User, int, error) {
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}
