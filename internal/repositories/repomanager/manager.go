// Package repomanager vends dialect-specific repositories bound to a
// dbx.DBTX and exposes the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/repositories/users"
	"github.com/dmitrijs2005/openpass/internal/repositories/vault"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Vault(db dbx.DBTX) vault.Repository
}
