package company

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

const companyCols = `company_id, company_title, company_name, company_code, tax_number,
	tax_office, email, phone, website, address, city, state, country, postal_code,
	license_type, health_license_number, license_expiry_date, service_level,
	sla_agreement_url, contract_start_date, contract_end_date, billing_cycle,
	currency, status, timezone, language, created_by, updated_by,
	created_at, updated_at, deleted_at`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Title, &c.Name, &c.Code, &c.TaxNumber,
		&c.TaxOffice, &c.Email, &c.Phone, &c.Website, &c.Address, &c.City, &c.State,
		&c.Country, &c.PostalCode, &c.LicenseType, &c.HealthLicenseNumber,
		&c.LicenseExpiryDate, &c.ServiceLevel, &c.SLAAgreementURL,
		&c.ContractStartDate, &c.ContractEndDate, &c.BillingCycle,
		&c.Currency, &c.Status, &c.Timezone, &c.Language, &c.CreatedBy, &c.UpdatedBy,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Company) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO companies (company_id, company_title, company_name, company_code,
			tax_number, tax_office, email, phone, website, address, city, state,
			country, postal_code, license_type, health_license_number,
			license_expiry_date, service_level, sla_agreement_url,
			contract_start_date, contract_end_date, billing_cycle, currency,
			status, timezone, language, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27)`,
		c.ID, c.Title, c.Name, c.Code, c.TaxNumber, c.TaxOffice, c.Email, c.Phone,
		c.Website, c.Address, c.City, c.State, c.Country, c.PostalCode,
		c.LicenseType, c.HealthLicenseNumber, c.LicenseExpiryDate, c.ServiceLevel,
		c.SLAAgreementURL, c.ContractStartDate, c.ContractEndDate, c.BillingCycle,
		c.Currency, c.Status, c.Timezone, c.Language, c.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyCols+` FROM companies WHERE company_id = $1 AND deleted_at IS NULL`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyCols+` FROM companies WHERE company_code = $1 AND deleted_at IS NULL`, code))
}

func (r *repoPG) GetByTaxNumber(ctx context.Context, taxNumber string) (*Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyCols+` FROM companies WHERE tax_number = $1 AND deleted_at IS NULL`, taxNumber))
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"deleted_at IS NULL"}
	var args []interface{}
	add := func(col, val string) {
		if val != "" {
			args = append(args, val)
			conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("status", f.Status)
	add("license_type", f.LicenseType)
	add("service_level", f.ServiceLevel)
	add("city", f.City)
	add("country", f.Country)
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*Company, int, error) {
	where, args := f.where()

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM companies WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM companies WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		companyCols, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectCompanies(rows)
	return items, total, err
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput, updatedBy uuid.UUID) error {
	b := db.NewUpdate("companies")
	set := func(col string, val *string) {
		if val != nil {
			b.Set(col, *val)
		}
	}
	set("company_title", in.Title)
	set("company_name", in.Name)
	set("tax_number", in.TaxNumber)
	set("tax_office", in.TaxOffice)
	set("email", in.Email)
	set("phone", in.Phone)
	set("website", in.Website)
	set("address", in.Address)
	set("city", in.City)
	set("state", in.State)
	set("country", in.Country)
	set("postal_code", in.PostalCode)
	set("license_type", in.LicenseType)
	set("health_license_number", in.HealthLicenseNumber)
	set("license_expiry_date", in.LicenseExpiryDate)
	set("service_level", in.ServiceLevel)
	set("sla_agreement_url", in.SLAAgreementURL)
	set("contract_start_date", in.ContractStartDate)
	set("contract_end_date", in.ContractEndDate)
	set("billing_cycle", in.BillingCycle)
	set("currency", in.Currency)
	set("status", in.Status)
	set("timezone", in.Timezone)
	set("language", in.Language)
	if b.Empty() {
		return nil
	}
	b.Set("updated_by", updatedBy)
	b.SetRaw("updated_at", "NOW()")

	sql, args := b.Where("company_id", id)
	tag, err := r.pool.Exec(ctx, sql+" AND deleted_at IS NULL", args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET deleted_at = NOW() WHERE company_id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Restore(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET deleted_at = NULL WHERE company_id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE company_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByServiceLevel(ctx context.Context, serviceLevel string) ([]*Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyCols+` FROM companies
		 WHERE service_level = $1 AND deleted_at IS NULL ORDER BY company_name`, serviceLevel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (r *repoPG) ExpiringLicenses(ctx context.Context, withinDays int) ([]*Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyCols+` FROM companies
		 WHERE license_expiry_date >= CURRENT_DATE
		   AND license_expiry_date <= CURRENT_DATE + make_interval(days => $1)
		   AND deleted_at IS NULL
		 ORDER BY license_expiry_date`, withinDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (r *repoPG) ExpiringContracts(ctx context.Context, withinDays int) ([]*Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyCols+` FROM companies
		 WHERE contract_end_date >= CURRENT_DATE
		   AND contract_end_date <= CURRENT_DATE + make_interval(days => $1)
		   AND deleted_at IS NULL
		 ORDER BY contract_end_date`, withinDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		StatusCount:       make(map[string]int),
		LicenseTypeCount:  make(map[string]int),
		ServiceLevelCount: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM companies
		WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.StatusCount[status] = count
		stats.Total += count
		if status == StatusActive {
			stats.ActiveCount = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "license_type", stats.LicenseTypeCount); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "service_level", stats.ServiceLevelCount); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repoPG) groupCount(ctx context.Context, col string, out map[string]int) error {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM companies
		WHERE deleted_at IS NULL AND %s IS NOT NULL GROUP BY %s`, col, col, col))
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
		out[key] = count
	}
	return rows.Err()
}

func collectCompanies(rows pgx.Rows) ([]*Company, error) {
	var items []*Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
