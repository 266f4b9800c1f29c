package vault

import (
	"context"

	"github.com/dmitrijs2005/openpass/internal/models"
)

// Repository describes vault row persistence.
type Repository interface {
	// Insert stores entry. entry.ID must already be set.
	Insert(ctx context.Context, entry *models.VaultEntry) error

	// ListByOwner returns all rows of ownerID in insertion order.
	ListByOwner(ctx context.Context, ownerID string) ([]models.VaultEntry, error)

	// DeleteByIDAndOwner removes the row matching both id and ownerID and
	// returns the number of rows removed (0 or 1).
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (int64, error)
}
