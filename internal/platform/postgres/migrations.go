package postgres

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationsDir is the directory of Migrations that holds the SQL files.
const MigrationsDir = "migrations"

// MigrationTable is the goose version table.
const MigrationTable = "schema_migrations"

// Migrations returns the embedded goose migrations.
func Migrations() fs.FS {
	return migrationFiles
}
