package usercompany

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRole is assigned when an affiliation is created without one.
const DefaultRole = "employee"

// RoleManager marks users allowed to administer their company.
const RoleManager = "manager"

// Affiliation links a user profile to a company. A user leaves a company by
// deactivation (end_date stamped), not by row deletion.
type Affiliation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	CompanyID     uuid.UUID  `db:"company_id" json:"company_id"`
	RoleInCompany string     `db:"role_in_company" json:"role_in_company"`
	Department    *string    `db:"department" json:"department,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Detail is an affiliation joined with its user and company rows.
type Detail struct {
	Affiliation
	UserFirstName string `db:"user_first_name" json:"user_first_name"`
	UserLastName  string `db:"user_last_name" json:"user_last_name"`
	UserEmail     string `db:"user_email" json:"user_email"`
	CompanyName   string `db:"company_name" json:"company_name"`
	CompanyCode   string `db:"company_code" json:"company_code"`
	CompanyStatus string `db:"company_status" json:"company_status"`
}

type CreateInput struct {
	UserID        uuid.UUID `json:"user_id"`
	CompanyID     uuid.UUID `json:"company_id"`
	RoleInCompany string    `json:"role_in_company"`
	Department    *string   `json:"department"`
	StartDate     *string   `json:"start_date"`
}

type UpdateInput struct {
	RoleInCompany *string `json:"role_in_company"`
	Department    *string `json:"department"`
}

// UserCompanies is the per-user detail view.
type UserCompanies struct {
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Companies []*Detail `json:"companies"`
}

// CompanyUsers is the per-company detail view.
type CompanyUsers struct {
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	CompanyCode string    `json:"company_code"`
	Users       []*Detail `json:"users"`
}
