// Package secrets persists platform credentials owned by vault accounts.
//
// Every row carries the platform password as an opaque cipher token; this
// package never encrypts or decrypts. Mutations by id are scoped to an owner
// so one account can never touch another account's rows.
package secrets

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/models"
)

// Repository describes storage operations for Secret rows.
type Repository interface {
	// Create inserts s with a store-assigned id and returns that id.
	Create(ctx context.Context, s *models.Secret) (int64, error)

	// Import inserts s keeping s.ID. Used by restore and CSV import.
	Import(ctx context.Context, s *models.Secret) error

	// FindByPlatform returns the owner's rows for platform ordered by id.
	FindByPlatform(ctx context.Context, owner, platform string) ([]models.Secret, error)

	// ListByOwner returns all rows of owner ordered by id.
	ListByOwner(ctx context.Context, owner string) ([]models.Secret, error)

	// ListPlatforms returns the distinct platforms of owner, sorted.
	ListPlatforms(ctx context.Context, owner string) ([]string, error)

	// Update replaces platform username and ciphertext of row id owned by
	// owner. It returns common.ErrNotFound when there is no such row.
	Update(ctx context.Context, owner string, id int64, platformUsername, ciphertext string) error

	// Delete removes row id owned by owner, or returns common.ErrNotFound.
	Delete(ctx context.Context, owner string, id int64) error

	// DeleteByOwner removes every row of owner and returns how many were removed.
	DeleteByOwner(ctx context.Context, owner string) (int64, error)

	// List returns every row ordered by id.
	List(ctx context.Context) ([]models.Secret, error)

	// DeleteAll wipes the table.
	DeleteAll(ctx context.Context) error
}
