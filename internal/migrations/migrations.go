// Package migrations embeds the goose SQL migrations that define the
// database schema. The files are applied by internal/platform/db.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
