package device

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

const deviceCols = `device_id, device_code, device_name, modality, device_type,
	manufacturer, model, serial_number, institution_id, aet_title, ip_address,
	port, urgent, location, installation_date, last_maintenance_date,
	next_maintenance_date, is_active, is_online, notes, created_at, updated_at,
	deleted_at`

const deviceJoinQuery = `
	SELECT d.device_id, d.device_code, d.device_name, d.modality, d.device_type,
		d.manufacturer, d.model, d.serial_number, d.institution_id, d.aet_title,
		d.ip_address, d.port, d.urgent, d.location, d.installation_date,
		d.last_maintenance_date, d.next_maintenance_date, d.is_active, d.is_online,
		d.notes, d.created_at, d.updated_at, d.deleted_at,
		i.institution_name, i.institution_code
	FROM devices d
	LEFT JOIN institutions i ON i.institution_id = d.institution_id`

func scanDevice(row pgx.Row) (*Device, error) {
	var d Device
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Modality, &d.DeviceType,
		&d.Manufacturer, &d.Model, &d.SerialNumber, &d.InstitutionID, &d.AETitle,
		&d.IPAddress, &d.Port, &d.Urgent, &d.Location, &d.InstallationDate,
		&d.LastMaintenanceDate, &d.NextMaintenanceDate, &d.IsActive, &d.IsOnline,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func scanDeviceWithInstitution(row pgx.Row) (*WithInstitution, error) {
	var d WithInstitution
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Modality, &d.DeviceType,
		&d.Manufacturer, &d.Model, &d.SerialNumber, &d.InstitutionID, &d.AETitle,
		&d.IPAddress, &d.Port, &d.Urgent, &d.Location, &d.InstallationDate,
		&d.LastMaintenanceDate, &d.NextMaintenanceDate, &d.IsActive, &d.IsOnline,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
		&d.InstitutionName, &d.InstitutionCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Device) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO devices (device_id, device_code, device_name, modality,
			device_type, manufacturer, model, serial_number, institution_id,
			aet_title, ip_address, port, urgent, location, installation_date,
			is_active, is_online, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		d.ID, d.Code, d.Name, d.Modality, d.DeviceType, d.Manufacturer, d.Model,
		d.SerialNumber, d.InstitutionID, d.AETitle, d.IPAddress, d.Port, d.Urgent,
		d.Location, d.InstallationDate, d.IsActive, d.IsOnline, d.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceCols+` FROM devices WHERE device_id = $1 AND deleted_at IS NULL`, id))
}

func (r *repoPG) GetByIDWithInstitution(ctx context.Context, id uuid.UUID) (*WithInstitution, error) {
	return scanDeviceWithInstitution(r.pool.QueryRow(ctx,
		deviceJoinQuery+` WHERE d.device_id = $1 AND d.deleted_at IS NULL`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceCols+` FROM devices WHERE device_code = $1 AND deleted_at IS NULL`, code))
}

func (r *repoPG) GetByAETitle(ctx context.Context, aeTitle string) (*Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceCols+` FROM devices WHERE aet_title = $1 AND deleted_at IS NULL`, aeTitle))
}

func (f Filters) where() (string, []interface{}) {
	conds := []string{"d.deleted_at IS NULL"}
	var args []interface{}
	if f.DeviceType != "" {
		args = append(args, f.DeviceType)
		conds = append(conds, fmt.Sprintf("d.device_type = $%d", len(args)))
	}
	if f.Modality != "" {
		args = append(args, f.Modality)
		conds = append(conds, fmt.Sprintf("d.modality = $%d", len(args)))
	}
	if f.InstitutionID != nil {
		args = append(args, *f.InstitutionID)
		conds = append(conds, fmt.Sprintf("d.institution_id = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("d.is_active = $%d", len(args)))
	}
	if f.IsOnline != nil {
		args = append(args, *f.IsOnline)
		conds = append(conds, fmt.Sprintf("d.is_online = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(d.device_name ILIKE $%d OR d.device_code ILIKE $%d OR d.aet_title ILIKE $%d)", n, n, n))
	}
	return strings.Join(conds, " AND "), args
}

func (r *repoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*WithInstitution, int, error) {
	where, args := f.where()

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM devices d WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY d.device_name LIMIT $%d OFFSET $%d`,
		deviceJoinQuery, where, len(args)+1, len(args)+2)
	items, err := r.queryJoined(ctx, query, append(args, limit, offset)...)
	return items, total, err
}

func (r *repoPG) ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]*WithInstitution, error) {
	return r.queryJoined(ctx,
		deviceJoinQuery+` WHERE d.institution_id = $1 AND d.deleted_at IS NULL ORDER BY d.device_name`,
		institutionID)
}

func (r *repoPG) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	b := db.NewUpdate("devices")
	set := func(col string, val *string) {
		if val != nil {
			b.Set(col, *val)
		}
	}
	set("device_code", in.Code)
	set("device_name", in.Name)
	set("modality", in.Modality)
	set("device_type", in.DeviceType)
	set("manufacturer", in.Manufacturer)
	set("model", in.Model)
	set("serial_number", in.SerialNumber)
	set("aet_title", in.AETitle)
	set("ip_address", in.IPAddress)
	set("location", in.Location)
	set("installation_date", in.InstallationDate)
	set("last_maintenance_date", in.LastMaintenanceDate)
	set("next_maintenance_date", in.NextMaintenanceDate)
	set("notes", in.Notes)
	if in.InstitutionID != nil {
		b.Set("institution_id", *in.InstitutionID)
	}
	if in.Port != nil {
		b.Set("port", *in.Port)
	}
	if in.Urgent != nil {
		b.Set("urgent", *in.Urgent)
	}
	if b.Empty() {
		return nil
	}
	b.SetRaw("updated_at", "NOW()")

	sql, args := b.Where("device_id", id)
	tag, err := r.pool.Exec(ctx, sql+" AND deleted_at IS NULL", args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) SetFlag(ctx context.Context, id uuid.UUID, column string, value bool) error {
	b := db.NewUpdate("devices")
	b.Set(column, value)
	b.SetRaw("updated_at", "NOW()")
	sql, args := b.Where("device_id", id)
	tag, err := r.pool.Exec(ctx, sql+" AND deleted_at IS NULL", args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) MaintenanceDue(ctx context.Context, daysAhead int) ([]*WithInstitution, error) {
	return r.queryJoined(ctx, deviceJoinQuery+`
		WHERE d.next_maintenance_date IS NOT NULL
		  AND d.next_maintenance_date <= CURRENT_DATE + make_interval(days => $1)
		  AND d.deleted_at IS NULL
		ORDER BY d.next_maintenance_date`, daysAhead)
}

func (r *repoPG) MaintenanceOverdue(ctx context.Context) ([]*WithInstitution, error) {
	return r.queryJoined(ctx, deviceJoinQuery+`
		WHERE d.next_maintenance_date IS NOT NULL
		  AND d.next_maintenance_date < CURRENT_DATE
		  AND d.deleted_at IS NULL
		ORDER BY d.next_maintenance_date`)
}

func (r *repoPG) RecentlyAdded(ctx context.Context, limit int) ([]*WithInstitution, error) {
	return r.queryJoined(ctx,
		deviceJoinQuery+` WHERE d.deleted_at IS NULL ORDER BY d.created_at DESC LIMIT $1`, limit)
}

func (r *repoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE devices SET deleted_at = NOW() WHERE device_id = $1 AND deleted_at IS NULL`, id)
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
		`UPDATE devices SET deleted_at = NULL WHERE device_id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) HardDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM devices WHERE device_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByType:     make(map[string]int),
		ByModality: make(map[string]int),
	}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE is_online)
		FROM devices WHERE deleted_at IS NULL`).
		Scan(&stats.Total, &stats.ActiveCount, &stats.OnlineCount)
	if err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "device_type", stats.ByType); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "modality", stats.ByModality); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *repoPG) groupCount(ctx context.Context, col string, out map[string]int) error {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM devices
		WHERE deleted_at IS NULL AND %s IS NOT NULL GROUP BY %s ORDER BY COUNT(*) DESC`, col, col, col))
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

func (r *repoPG) queryJoined(ctx context.Context, query string, args ...interface{}) ([]*WithInstitution, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*WithInstitution
	for rows.Next() {
		d, err := scanDeviceWithInstitution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
