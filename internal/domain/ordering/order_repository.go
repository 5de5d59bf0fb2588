package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository appends orders to the ledger. Orders are never updated.
type OrderRepository interface {
	InsertOrder(ctx context.Context, order *Order) error
}

// OrderQueryRepository reads enriched order views, newest first
type OrderQueryRepository interface {
	// ListAll returns every order
	ListAll(ctx context.Context) ([]OrderView, error)

	// ListBySeller returns orders whose product is currently listed by sellerID
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]OrderView, error)

	// ListByBuyer returns orders placed by buyerID
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]OrderView, error)
}
