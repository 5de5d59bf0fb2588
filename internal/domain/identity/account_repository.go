package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// Create inserts a new account. A taken username yields shared.ErrAlreadyExists.
	Create(ctx context.Context, account *Account) error

	// GetByID finds an account by ID, shared.ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByUsername finds an account by its exact username, shared.ErrNotFound if absent
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
