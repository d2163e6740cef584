package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the business-facing profile record, linked 1:1 to a credential row
// via LoginID.
type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	LoginID         uuid.UUID  `db:"login_id" json:"login_id"`
	CompanyID       *uuid.UUID `db:"company_id" json:"company_id,omitempty"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Email           string     `db:"email" json:"email"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	LicenseNumber   *string    `db:"license_number" json:"license_number,omitempty"`
	Specialization  *string    `db:"specialization" json:"specialization,omitempty"`
	HospitalName    *string    `db:"hospital_name" json:"hospital_name,omitempty"`
	Department      *string    `db:"department" json:"department,omitempty"`
	ProfileImageURL *string    `db:"profile_image_url" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile joins the user row with its credential and company for display.
type Profile struct {
	User
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CompanyName *string    `json:"company_name,omitempty"`
	CompanyCode *string    `json:"company_code,omitempty"`
}

// UpdateInput carries the optional profile fields a PUT may change. Nil
// pointers leave the column untouched.
type UpdateInput struct {
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	Email           *string    `json:"email"`
	Phone           *string    `json:"phone"`
	CompanyID       *uuid.UUID `json:"company_id"`
	LicenseNumber   *string    `json:"license_number"`
	Specialization  *string    `json:"specialization"`
	HospitalName    *string    `json:"hospital_name"`
	Department      *string    `json:"department"`
	ProfileImageURL *string    `json:"profile_image_url"`
}
