package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"movura-admin/core/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations brings the schema up to date. The migration SQL is written
// in the portable subset both backends accept; dialect selection only
// affects goose's own bookkeeping table.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	isPG, err := isPostgresDB(ctx, db)
	if err != nil {
		return err
	}
	dialect := "sqlite3"
	if isPG {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if logger != nil {
		logger.Printf("applying migrations (%s)", dialect)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return err
	}
	if logger != nil {
		logger.Printf("migrations applied")
	}
	return nil
}

func isPostgresDB(ctx context.Context, db *sql.DB) (bool, error) {
	var version string
	err := db.QueryRowContext(ctx, `SELECT version()`).Scan(&version)
	if err != nil {
		// sqlite has no version() function; sqlite_version() exists instead.
		var sv string
		if serr := db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&sv); serr == nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
