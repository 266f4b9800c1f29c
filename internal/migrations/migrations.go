// Package migrations embeds the goose SQL migrations for each supported
// database dialect and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// ForDialect returns the migration directory for d rooted so that goose can
// read it as ".".
func ForDialect(d dbx.Dialect) (fs.FS, error) {
	switch d {
	case dbx.DialectSQLite, dbx.DialectPostgres:
		return fs.Sub(Migrations, string(d))
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", d)
	}
}

// Up applies every pending migration for d to db.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	sub, err := ForDialect(d)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.GooseDialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
