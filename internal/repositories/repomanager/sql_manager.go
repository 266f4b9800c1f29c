package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/migrations"
	"github.com/dmitrijs2005/openpass/internal/repositories/users"
	"github.com/dmitrijs2005/openpass/internal/repositories/vault"
)

// SQLRepositoryManager vends SQL repositories for a single dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// Vault returns a vault.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Vault(db dbx.DBTX) vault.Repository {
	return vault.NewSQLRepository(db, m.dialect)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.dialect)
}

// NewRepositoryManager constructs a RepositoryManager for dialect.
func NewRepositoryManager(dialect dbx.Dialect) RepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}
