package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/cryptox"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/repositories/repomanager"
	"github.com/dmitrijs2005/openpass/internal/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Str0ng!Passw0rd#"

// newSQLiteExecutor returns a migrated, file-backed SQLite executor.
func newSQLiteExecutor(t *testing.T) (*dbx.Executor, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	db, err := dbx.Open(ctx, dbx.DialectSQLite, filepath.Join(t.TempDir(), "openpass.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, m.RunMigrations(ctx, db))

	return dbx.NewExecutor(db, dbx.DialectSQLite), m
}

func newMockExecutor(t *testing.T) (*dbx.Executor, repomanager.RepositoryManager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return dbx.NewExecutor(db, dbx.DialectPostgres), repomanager.NewRepositoryManager(dbx.DialectPostgres), mock
}

func newAuth(t *testing.T, exec *dbx.Executor, m repomanager.RepositoryManager) *AuthService {
	t.Helper()
	s, err := NewAuthService(exec, m, bcrypt.MinCost, logging.NewNop())
	require.NoError(t, err)
	return s
}

// registerAndLogin creates username and returns the logged-in account.
func registerAndLogin(t *testing.T, auth *AuthService, username string) *models.User {
	t.Helper()
	ctx := context.Background()
	_, err := auth.Register(ctx, username, []byte(strongPassword), username+"@example.com")
	require.NoError(t, err)
	u, err := auth.Login(ctx, username, []byte(strongPassword))
	require.NoError(t, err)
	return u
}

// newTestSession builds a session with a random key, skipping the KDF.
func newTestSession(t *testing.T, u *models.User) *session.Session {
	t.Helper()
	s, err := session.FromKey(u, common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func rawVaultRows(t *testing.T, db *sql.DB) []models.VaultEntry {
	t.Helper()
	rows, err := db.Query(`SELECT id, user_id, site_name, site_user, site_password FROM vault ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var out []models.VaultEntry
	for rows.Next() {
		var e models.VaultEntry
		require.NoError(t, rows.Scan(&e.ID, &e.OwnerID, &e.SiteNameCipher, &e.SiteUserCipher, &e.SitePasswordCipher))
		out = append(out, e)
	}
	require.NoError(t, rows.Err())
	return out
}
