// Package accounts persists vault owner accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/models"
)

// Repository describes storage operations for Account rows.
type Repository interface {
	// Create inserts a new account. It returns common.ErrDuplicateUser if the
	// username is taken, leaving the existing row unchanged.
	Create(ctx context.Context, a *models.Account) error

	// GetByUsername returns common.ErrNotFound when no such account exists.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// UpdatePasswordHash overwrites the stored password digest.
	UpdatePasswordHash(ctx context.Context, username, hash string) error

	// Delete removes the account row. Owned secrets go with it through the
	// foreign key cascade.
	Delete(ctx context.Context, username string) error

	// List returns every account ordered by username.
	List(ctx context.Context) ([]models.Account, error)

	// DeleteAll wipes the table.
	DeleteAll(ctx context.Context) error
}
