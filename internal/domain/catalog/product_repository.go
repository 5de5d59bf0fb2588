package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductListing is a product row joined with its seller's username
type ProductListing struct {
	ID             uuid.UUID
	Name           string
	Price          decimal.Decimal
	Stock          int
	SellerID       *uuid.UUID
	SellerUsername *string
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	// SellerID restricts the listing to one seller's products
	SellerID *uuid.UUID
	// SortBy is one of name, price or stock. Defaults to name.
	SortBy string
	// SortOrder is ASC or DESC. Defaults to ASC.
	SortOrder string
}

// ProductRepository defines the interface for product persistence.
// Implementations bound to a transaction see that transaction's writes.
type ProductRepository interface {
	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// GetByID finds a product by ID, shared.ErrNotFound if absent
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetProductForUpdate reads a product and holds a row lock on it until
	// the surrounding transaction ends. shared.ErrNotFound if absent.
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// SetStock writes newStock only while the stored stock still equals
	// expectedCurrent. Returns shared.ErrConcurrencyConflict when it does not.
	SetStock(ctx context.Context, id uuid.UUID, newStock, expectedCurrent int) error

	// Update persists price and stock changes
	Update(ctx context.Context, product *Product) error

	// Delete removes a product. Orders that reference it are kept.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns products joined with seller usernames, ordered by filter
	List(ctx context.Context, filter ProductFilter) ([]ProductListing, error)
}
