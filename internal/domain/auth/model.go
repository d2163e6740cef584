package auth

import (
	"time"

	"github.com/google/uuid"
)

// Roles a credential may carry.
const (
	RoleAdmin       = "admin"
	RoleRadiologist = "radiologist"
	RoleTechnician  = "technician"
	RoleUser        = "user"
)

// ValidRoles is the closed set accepted at registration.
var ValidRoles = map[string]bool{
	RoleAdmin:       true,
	RoleRadiologist: true,
	RoleTechnician:  true,
	RoleUser:        true,
}

const (
	// MaxLoginAttempts failed verifications lock the account.
	MaxLoginAttempts = 5
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 30 * time.Minute
)

// Credential is one login identity. Rows are created at registration and
// mutated on every login attempt; they are never physically deleted here.
type Credential struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	Username               string     `db:"username" json:"username"`
	PasswordHash           string     `db:"password" json:"-"`
	Role                   string     `db:"role" json:"role"`
	IsActive               bool       `db:"is_active" json:"is_active"`
	LoginAttemptCount      int        `db:"login_attempt_count" json:"-"`
	LockedUntil            *time.Time `db:"locked_until" json:"-"`
	RefreshToken           *string    `db:"refresh_token" json:"-"`
	PasswordResetToken     *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpiresAt *time.Time `db:"password_reset_expires_at" json:"-"`
	LastLoginAt            *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Locked reports whether the lockout window is still open at now.
func (c *Credential) Locked(now time.Time) bool {
	return c.LockedUntil != nil && c.LockedUntil.After(now)
}

// RegisterInput is the registration request payload.
type RegisterInput struct {
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	CompanyID      *string `json:"company_id"`
	Role           string  `json:"role"`
	LicenseNumber  *string `json:"license_number"`
	Specialization *string `json:"specialization"`
	HospitalName   *string `json:"hospital_name"`
	Department     *string `json:"department"`
}

// LoginInput is the login request payload.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
