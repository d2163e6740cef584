package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radbridge/radbridge/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) CredentialRepository {
	return &repoPG{pool: pool}
}

const credentialCols = `id, username, password, role, is_active, login_attempt_count,
	locked_until, refresh_token, password_reset_token, password_reset_expires_at,
	last_login_at, created_at, updated_at`

func scanCredential(row pgx.Row) (*Credential, error) {
	var c Credential
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Role, &c.IsActive,
		&c.LoginAttemptCount, &c.LockedUntil, &c.RefreshToken,
		&c.PasswordResetToken, &c.PasswordResetExpiresAt,
		&c.LastLoginAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Credential) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO logins (id, username, password, role, is_active, login_attempt_count)
		VALUES ($1, $2, $3, $4, TRUE, 0)`,
		c.ID, c.Username, c.PasswordHash, c.Role)
	if err != nil {
		return err
	}
	c.IsActive = true
	c.LoginAttemptCount = 0
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Credential, error) {
	return scanCredential(r.pool.QueryRow(ctx,
		`SELECT `+credentialCols+` FROM logins WHERE id = $1`, id))
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*Credential, error) {
	return scanCredential(r.pool.QueryRow(ctx,
		`SELECT `+credentialCols+` FROM logins WHERE username = $1`, username))
}

func (r *repoPG) IncrementLoginAttempts(ctx context.Context, id uuid.UUID) error {
	sql, args := db.NewUpdate("logins").
		SetRaw("login_attempt_count", "login_attempt_count + 1").
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}

func (r *repoPG) ResetLoginAttempts(ctx context.Context, id uuid.UUID) error {
	sql, args := db.NewUpdate("logins").
		Set("login_attempt_count", 0).
		SetRaw("locked_until", "NULL").
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}

func (r *repoPG) LockUntil(ctx context.Context, id uuid.UUID, until time.Time) error {
	sql, args := db.NewUpdate("logins").
		Set("locked_until", until).
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}

func (r *repoPG) StampLastLogin(ctx context.Context, id uuid.UUID) error {
	sql, args := db.NewUpdate("logins").
		SetRaw("last_login_at", "NOW()").
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}

func (r *repoPG) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	sql, args := db.NewUpdate("logins").
		Set("refresh_token", token).
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}

func (r *repoPG) SetPasswordResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	sql, args := db.NewUpdate("logins").
		Set("password_reset_token", token).
		Set("password_reset_expires_at", expiresAt).
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}

func (r *repoPG) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	sql, args := db.NewUpdate("logins").
		Set("password", passwordHash).
		SetRaw("password_reset_token", "NULL").
		SetRaw("password_reset_expires_at", "NULL").
		SetRaw("updated_at", "NOW()").
		Where("id", id)
	_, err := r.pool.Exec(ctx, sql, args...)
	return err
}
