package dbx

import (
	"context"
	"database/sql"
	"sync"
)

// Executor is the persistence collaborator used by the services. Calls are
// executed one at a time; each call runs inside its own transaction that is
// committed when fn returns nil and rolled back otherwise.
type Executor struct {
	mu      sync.Mutex
	db      *sql.DB
	dialect Dialect
}

// NewExecutor wraps db. The dialect is used by repositories to rebind
// placeholders.
func NewExecutor(db *sql.DB, dialect Dialect) *Executor {
	return &Executor{db: db, dialect: dialect}
}

// Dialect returns the SQL dialect of the underlying database.
func (e *Executor) Dialect() Dialect { return e.dialect }

// DB exposes the underlying handle for migrations and shutdown.
func (e *Executor) DB() *sql.DB { return e.db }

// Do runs fn in a fresh transaction while holding the executor lock.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return WithTx(ctx, e.db, nil, fn)
}

// Close closes the underlying database after in-flight calls finish.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Close()
}
