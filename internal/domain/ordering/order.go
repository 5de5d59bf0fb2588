package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Order is an immutable record of a completed purchase.
// Only the placement engine creates orders; ProductID may later dangle
// when the product is deleted.
type Order struct {
	shared.BaseAggregateRoot
	BuyerID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	PlacedAt  time.Time
}

// NewOrder creates an order placed at placedAt (normalized to UTC)
func NewOrder(buyerID, productID uuid.UUID, quantity int, placedAt time.Time) (*Order, error) {
	if quantity <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Quantity must be a positive integer")
	}
	if buyerID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Order requires a buyer and a product")
	}

	placedAt = placedAt.UTC()
	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuyerID:           buyerID,
		ProductID:         productID,
		Quantity:          quantity,
		PlacedAt:          placedAt,
	}
	order.CreatedAt = placedAt
	order.UpdatedAt = placedAt

	return order, nil
}

// OrderView is an order enriched for display. The product and seller
// fields are nil when the product no longer exists or has no seller.
type OrderView struct {
	ID             uuid.UUID
	BuyerID        uuid.UUID
	ProductID      uuid.UUID
	Quantity       int
	PlacedAt       time.Time
	ProductName    *string
	ProductPrice   *decimal.Decimal
	BuyerUsername  *string
	SellerID       *uuid.UUID
	SellerUsername *string
}

// HasProduct reports whether the referenced product still exists
func (v OrderView) HasProduct() bool {
	return v.ProductName != nil
}

// Total is price times quantity, zero when the product is gone
func (v OrderView) Total() decimal.Decimal {
	if v.ProductPrice == nil {
		return decimal.Zero
	}
	return v.ProductPrice.Mul(decimal.NewFromInt(int64(v.Quantity)))
}
