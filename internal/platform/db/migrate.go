package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/radbridge/radbridge/internal/migrations"
)

// MigrationStatus describes a single known migration and whether it has been
// applied to the target database.
type MigrationStatus struct {
	Version   int64
	Source    string
	Applied   bool
	AppliedAt string
}

// Migrate runs all pending migrations embedded in internal/migrations against
// the database at databaseURL. goose needs a database/sql connection, so a
// short-lived one is opened via the pgx stdlib driver independently of the
// pgxpool the repositories use.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigrationStatuses reports every embedded migration with its applied state.
func MigrationStatuses(ctx context.Context, databaseURL string) ([]MigrationStatus, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	migs, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("collect migrations: %w", err)
	}

	current, err := goose.GetDBVersionContext(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("read db version: %w", err)
	}

	statuses := make([]MigrationStatus, 0, len(migs))
	for _, m := range migs {
		statuses = append(statuses, MigrationStatus{
			Version: m.Version,
			Source:  m.Source,
			Applied: m.Version <= current,
		})
	}
	return statuses, nil
}
