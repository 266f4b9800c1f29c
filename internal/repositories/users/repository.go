package users

import (
	"context"

	"github.com/dmitrijs2005/openpass/internal/models"
)

// Repository describes account persistence.
type Repository interface {
	// Create inserts user. user.ID must already be set.
	Create(ctx context.Context, user *models.User) error

	// GetByUserName returns the account with the exact (case-sensitive)
	// username, or common.ErrorNotFound.
	GetByUserName(ctx context.Context, userName string) (*models.User, error)

	// UpdatePasswordHash replaces the stored hash of user id, or returns
	// common.ErrorNotFound.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
