package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/cryptox"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_OnceThenDuplicate(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	auth := newAuth(t, exec, m)
	ctx := context.Background()

	id, err := auth.Register(ctx, "alice", []byte(strongPassword), "a@b.com")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = auth.Register(ctx, "alice", []byte("An0ther!Passw0rd"), "c@d.com")
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)
	assert.Equal(t, common.KindDuplicateUsername, common.KindOf(err))

	// case-sensitive usernames
	_, err = auth.Register(ctx, "Alice", []byte(strongPassword), "a@b.com")
	assert.NoError(t, err)
}

func TestRegister_StoresHashAndIndependentSalt(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	auth := newAuth(t, exec, m)

	alice := registerAndLogin(t, auth, "alice")
	bob := registerAndLogin(t, auth, "bob")

	assert.Len(t, alice.KDFSalt, cryptox.SaltSize)
	assert.Len(t, bob.KDFSalt, cryptox.SaltSize)
	assert.NotEqual(t, alice.KDFSalt, bob.KDFSalt)

	assert.NotContains(t, alice.PasswordHash, strongPassword)
	assert.True(t, strings.HasPrefix(alice.PasswordHash, "$2"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte(strongPassword)))
	assert.Equal(t, "alice@example.com", alice.RecoveryContact)
}

func TestRegister_Validation(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	auth := newAuth(t, exec, m)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", []byte(strongPassword), "not-an-email")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = auth.Register(ctx, "", []byte(strongPassword), "a@b.com")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = auth.Register(ctx, "alice", []byte(strings.Repeat("A1!a", 19)), "a@b.com")
	assert.ErrorIs(t, err, common.ErrValidation)

	// nothing was stored
	_, err = auth.Login(ctx, "alice", []byte(strongPassword))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
}

func TestRegisterAccount(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	auth := newAuth(t, exec, m)
	ctx := context.Background()

	_, err := auth.RegisterAccount(ctx, "alice", "a@b.com", []byte(strongPassword), []byte("different"))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = auth.RegisterAccount(ctx, "alice", "a@b.com", []byte("weak"), []byte("weak"))
	assert.ErrorIs(t, err, common.ErrValidation)

	id, err := auth.RegisterAccount(ctx, "alice", "a@b.com", []byte(strongPassword), []byte(strongPassword))
	require.NoError(t, err)

	u, err := auth.Login(ctx, "alice", []byte(strongPassword))
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
}

func TestLogin(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	auth := newAuth(t, exec, m)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", []byte(strongPassword), "a@b.com")
	require.NoError(t, err)

	u, err := auth.Login(ctx, "alice", []byte(strongPassword))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
	assert.Len(t, u.KDFSalt, cryptox.SaltSize)

	_, wrongErr := auth.Login(ctx, "alice", []byte("wrong"))
	_, unknownErr := auth.Login(ctx, "nobody", []byte("whatever"))

	assert.ErrorIs(t, wrongErr, common.ErrAuthenticationFailure)
	assert.ErrorIs(t, unknownErr, common.ErrAuthenticationFailure)
	// indistinguishable
	assert.Equal(t, wrongErr.Error(), unknownErr.Error())
}

func TestLogin_AlwaysComparesOneHash(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	auth := newAuth(t, exec, m)
	ctx := context.Background()
	_, err := auth.Register(ctx, "alice", []byte(strongPassword), "a@b.com")
	require.NoError(t, err)

	orig := compareHash
	t.Cleanup(func() { compareHash = orig })

	var calls int
	var lastHash []byte
	compareHash = func(hash, pw []byte) error {
		calls++
		lastHash = hash
		return orig(hash, pw)
	}

	_, err = auth.Login(ctx, "nobody", []byte("whatever"))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.Equal(t, 1, calls)
	assert.Equal(t, auth.dummyHash, lastHash)

	cost, err := bcrypt.Cost(lastHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	calls = 0
	_, err = auth.Login(ctx, "alice", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.Equal(t, 1, calls)
}

func TestLogin_StaleCostHashIsComparedAtCurrentCostAndReplaced(t *testing.T) {
	exec, m := newSQLiteExecutor(t)
	ctx := context.Background()
	_, err := newAuth(t, exec, m).Register(ctx, "alice", []byte(strongPassword), "a@b.com")
	require.NoError(t, err)

	auth, err := NewAuthService(exec, m, DefaultBcryptCost, logging.NewNop())
	require.NoError(t, err)

	orig := compareHash
	t.Cleanup(func() { compareHash = orig })

	var costs []int
	compareHash = func(hash, pw []byte) error {
		c, err := bcrypt.Cost(hash)
		require.NoError(t, err)
		costs = append(costs, c)
		return orig(hash, pw)
	}

	_, err = auth.Login(ctx, "alice", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.ElementsMatch(t, []int{bcrypt.MinCost, DefaultBcryptCost}, costs)

	costs = nil
	_, err = auth.Login(ctx, "nobody", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.Equal(t, []int{DefaultBcryptCost}, costs)

	costs = nil
	u, err := auth.Login(ctx, "alice", []byte(strongPassword))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{bcrypt.MinCost, DefaultBcryptCost}, costs)
	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)

	// the replacement hash is persisted
	costs = nil
	_, err = auth.Login(ctx, "alice", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.Equal(t, []int{DefaultBcryptCost}, costs)

	costs = nil
	u2, err := auth.Login(ctx, "alice", []byte(strongPassword))
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	assert.Equal(t, u.PasswordHash, u2.PasswordHash)
	assert.Equal(t, []int{DefaultBcryptCost}, costs)
}

func TestLogin_PersistenceErrorPropagates(t *testing.T) {
	exec, m, mock := newMockExecutor(t)
	auth := newAuth(t, exec, m)

	boom := errors.New("connection refused")
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM credentials`).WithArgs("alice").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := auth.Login(context.Background(), "alice", []byte(strongPassword))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.Equal(t, common.KindPersistence, common.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_PersistenceErrorRollsBack(t *testing.T) {
	exec, m, mock := newMockExecutor(t)
	auth := newAuth(t, exec, m)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO credentials`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := auth.Register(context.Background(), "alice", []byte(strongPassword), "a@b.com")
	require.Error(t, err)
	assert.Equal(t, common.KindPersistence, common.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_PostgresUniqueViolation(t *testing.T) {
	exec, m, mock := newMockExecutor(t)
	auth := newAuth(t, exec, m)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO credentials`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := auth.Register(context.Background(), "alice", []byte(strongPassword), "a@b.com")
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAuthService_Cost(t *testing.T) {
	exec, m := newSQLiteExecutor(t)

	_, err := NewAuthService(exec, m, 99, logging.NewNop())
	assert.Error(t, err)

	s, err := NewAuthService(exec, m, bcrypt.MinCost, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, s.cost)
}
