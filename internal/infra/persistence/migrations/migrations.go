// Package migrations embeds the schema migrations for every supported store
// and applies them with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"authapp/internal/errors"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// Dialect names the SQL flavour of a migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// FS returns the migration files for the dialect.
func FS(dialect Dialect) (fs.FS, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
		sub, err := fs.Sub(embedded, string(dialect))
		if err != nil {
			return nil, errors.Wrapf(err, "open %s migrations", dialect)
		}

		return sub, nil
	default:
		return nil, errors.Errorf("unsupported migration dialect: %s", dialect)
	}
}

// NewProvider builds a goose provider bound to db. Providers carry no global
// state, so stores opened concurrently do not interfere.
func NewProvider(db *sql.DB, dialect Dialect) (*goose.Provider, error) {
	fsys, err := FS(dialect)
	if err != nil {
		return nil, err
	}

	gooseDialect := goose.DialectPostgres
	if dialect == DialectSQLite {
		gooseDialect = goose.DialectSQLite3
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return nil, errors.Wrap(err, "create migration provider")
	}

	return provider, nil
}

// Up applies all pending migrations.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) error {
	provider, err := NewProvider(db, dialect)
	if err != nil {
		return err
	}

	if _, err := provider.Up(ctx); err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	return nil
}
