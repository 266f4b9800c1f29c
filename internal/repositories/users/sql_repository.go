package users

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	query := r.dialect.Rebind(
		`INSERT INTO credentials (id, username, password_hash, salt, two_fa_contact)
		 VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.UserName, user.PasswordHash,
		base64.StdEncoding.EncodeToString(user.KDFSalt), user.RecoveryContact)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *SQLRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, username, password_hash, salt, two_fa_contact FROM credentials
		 WHERE username = ?`)

	user := &models.User{}
	var salt string
	err := r.db.QueryRowContext(ctx, query, userName).
		Scan(&user.ID, &user.UserName, &user.PasswordHash, &salt, &user.RecoveryContact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	user.KDFSalt, err = base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("corrupt salt for user %s: %w", user.ID, err)
	}

	return user, nil
}

func (r *SQLRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	query := r.dialect.Rebind(`UPDATE credentials SET password_hash = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
