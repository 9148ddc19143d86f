// Package migrations holds the schema for each supported store dialect.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed mysql/*.sql postgres/*.sql
var files embed.FS

// Dialects understood by Up and Down; they double as STORE_DRIVER values.
const (
	MySQL    = "mysql"
	Postgres = "postgres"
)

func source(dialect string) (migrate.MigrationSource, error) {
	switch dialect {
	case MySQL, Postgres:
		return migrate.EmbedFileSystemMigrationSource{FileSystem: files, Root: dialect}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// Up applies all pending migrations and returns how many ran.
func Up(db *sql.DB, dialect string) (int, error) {
	src, err := source(dialect)
	if err != nil {
		return 0, err
	}
	return migrate.Exec(db, dialect, src, migrate.Up)
}

// Down rolls back every applied migration and returns how many ran.
func Down(db *sql.DB, dialect string) (int, error) {
	src, err := source(dialect)
	if err != nil {
		return 0, err
	}
	return migrate.Exec(db, dialect, src, migrate.Down)
}
