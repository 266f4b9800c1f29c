package vault

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/migrations"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DialectSQLite, filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, dbx.DialectSQLite))

	for _, id := range []string{"owner-a", "owner-b"} {
		_, err = db.Exec(`INSERT INTO credentials VALUES (?, ?, 'h', 's', 'x@y.com')`, id, id)
		require.NoError(t, err)
	}
	return db
}

func row(id, owner string) *models.VaultEntry {
	return &models.VaultEntry{
		ID:                 id,
		OwnerID:            owner,
		SiteNameCipher:     "n-" + id,
		SiteUserCipher:     "u-" + id,
		SitePasswordCipher: "p-" + id,
	}
}

func TestInsertAndList(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, row("01", "owner-a")))
	require.NoError(t, r.Insert(ctx, row("02", "owner-a")))
	require.NoError(t, r.Insert(ctx, row("03", "owner-b")))

	got, err := r.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, *row("01", "owner-a"), got[0])
	assert.Equal(t, *row("02", "owner-a"), got[1])

	empty, err := r.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestInsert_UnknownOwnerRejected(t *testing.T) {
	r := NewSQLRepository(setupDB(t), dbx.DialectSQLite)

	err := r.Insert(context.Background(), row("01", "ghost"))
	assert.Error(t, err)
}

func TestDeleteByIDAndOwner(t *testing.T) {
	db := setupDB(t)
	r := NewSQLRepository(db, dbx.DialectSQLite)
	ctx := context.Background()
	require.NoError(t, r.Insert(ctx, row("01", "owner-a")))

	// wrong owner leaves the row alone
	n, err := r.DeleteByIDAndOwner(ctx, "01", "owner-b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	list, err := r.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err = r.DeleteByIDAndOwner(ctx, "01", "owner-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err = r.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	assert.Empty(t, list)

	// already gone
	n, err = r.DeleteByIDAndOwner(ctx, "01", "owner-a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func newMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(db, dbx.DialectPostgres), mock
}

func TestDelete_Postgres_Predicate(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec(`^DELETE FROM vault WHERE id = \$1 AND user_id = \$2$`).
		WithArgs("e1", "owner-a").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := r.DeleteByIDAndOwner(context.Background(), "e1", "owner-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RowsAffectedError(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM vault`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))

	_, err := r.DeleteByIDAndOwner(context.Background(), "e1", "owner-a")
	assert.ErrorContains(t, err, "failed to get rows affected")
}

func TestListByOwner_Errors(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectQuery(`FROM vault`).WithArgs("owner-a").WillReturnError(errors.New("db down"))
	_, err := r.ListByOwner(context.Background(), "owner-a")
	assert.ErrorContains(t, err, "failed to select entries")

	rows := sqlmock.NewRows([]string{"id", "user_id", "site_name", "site_user", "site_password"}).
		AddRow("e1", "owner-a", "n", "u", "p").
		RowError(0, errors.New("broken row"))
	mock.ExpectQuery(`FROM vault`).WithArgs("owner-a").WillReturnRows(rows)
	_, err = r.ListByOwner(context.Background(), "owner-a")
	assert.Error(t, err)
}

func TestInsert_DBError(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO vault`).WillReturnError(errors.New("disk full"))
	err := r.Insert(context.Background(), row("01", "owner-a"))
	assert.ErrorContains(t, err, "failed to insert entry: disk full")
}
