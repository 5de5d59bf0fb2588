package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
)

// OrderModel maps the orders table. product_id has no foreign key so that
// deleting a product leaves its order history intact.
type OrderModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null;check:quantity > 0"`
	PlacedAt  time.Time `gorm:"not null;index"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the row to an Order.
func (m *OrderModel) ToDomain() *ordering.Order {
	return &ordering.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.PlacedAt, UpdatedAt: m.PlacedAt},
		},
		BuyerID:   m.BuyerID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		PlacedAt:  m.PlacedAt,
	}
}

// OrderModelFromDomain builds a row from an Order.
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	return &OrderModel{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		PlacedAt:  o.PlacedAt.UTC(),
	}
}
