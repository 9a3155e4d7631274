// Package migrate applies the embedded task schema with goose.
// The same SQL runs on SQLite and PostgreSQL.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Dialects supported by the schema.
const (
	SQLite   = goose.DialectSQLite3
	Postgres = goose.DialectPostgres
)

func provider(db *sql.DB, dialect goose.Dialect) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, fsys)
}

// Up applies pending migrations and returns how many ran.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) (int, error) {
	p, err := provider(db, dialect)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	res, err := p.Up(ctx)
	if err != nil {
		return len(res), fmt.Errorf("migrate up: %w", err)
	}
	return len(res), nil
}

// Version returns the current schema version (0 before the first migration).
func Version(ctx context.Context, db *sql.DB, dialect goose.Dialect) (int64, error) {
	p, err := provider(db, dialect)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	return p.GetDBVersion(ctx)
}

// Reset rolls back every applied migration.
func Reset(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	p, err := provider(db, dialect)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if _, err := p.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("migrate reset: %w", err)
	}
	return nil
}
