package vault

import (
	"context"
	"fmt"

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

func (r *SQLRepository) Insert(ctx context.Context, entry *models.VaultEntry) error {
	query := r.dialect.Rebind(
		`INSERT INTO vault (id, user_id, site_name, site_user, site_password)
		 VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.OwnerID,
		entry.SiteNameCipher, entry.SiteUserCipher, entry.SitePasswordCipher)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// ListByOwner orders by id; ids are UUIDv7 so this is insertion order.
func (r *SQLRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.VaultEntry, error) {
	query := r.dialect.Rebind(
		`SELECT id, user_id, site_name, site_user, site_password FROM vault
		 WHERE user_id = ? ORDER BY id`)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []models.VaultEntry{}
	for rows.Next() {
		var item models.VaultEntry
		if err := rows.Scan(&item.ID, &item.OwnerID,
			&item.SiteNameCipher, &item.SiteUserCipher, &item.SitePasswordCipher); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error) {
	query := r.dialect.Rebind(`DELETE FROM vault WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n, nil
}
