package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest buys quantity units of a product. Quantity defaults to 1.
type PlaceOrderRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid" example:"0b6f7c1e-7a4b-4c53-9d3c-2f1c6e0a9b11"`
	Quantity  *int   `json:"quantity" example:"2"`
}

func (r PlaceOrderRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// OrderResponse is the order returned after placement
type OrderResponse struct {
	ID        uuid.UUID `json:"id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	PlacedAt  time.Time `json:"placed_at"`
}

// OrderViewResponse is one row of an order listing. Product fields are null
// when the product has since been deleted.
type OrderViewResponse struct {
	ID             uuid.UUID        `json:"id"`
	BuyerID        uuid.UUID        `json:"buyer_id"`
	BuyerUsername  *string          `json:"buyer_username"`
	ProductID      uuid.UUID        `json:"product_id"`
	ProductName    *string          `json:"product_name"`
	ProductPrice   *decimal.Decimal `json:"product_price" swaggertype:"string"`
	SellerID       *uuid.UUID       `json:"seller_id"`
	SellerUsername *string          `json:"seller_username"`
	Quantity       int              `json:"quantity"`
	Total          *decimal.Decimal `json:"total" swaggertype:"string"`
	PlacedAt       time.Time        `json:"placed_at"`
}

func toOrderResponse(o *ordering.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		PlacedAt:  o.PlacedAt,
	}
}

func toOrderViewResponses(views []ordering.OrderView) []OrderViewResponse {
	out := make([]OrderViewResponse, len(views))
	for i, v := range views {
		r := OrderViewResponse{
			ID:             v.ID,
			BuyerID:        v.BuyerID,
			BuyerUsername:  v.BuyerUsername,
			ProductID:      v.ProductID,
			ProductName:    v.ProductName,
			ProductPrice:   v.ProductPrice,
			SellerID:       v.SellerID,
			SellerUsername: v.SellerUsername,
			Quantity:       v.Quantity,
			PlacedAt:       v.PlacedAt,
		}
		if v.HasProduct() {
			total := v.Total()
			r.Total = &total
		}
		out[i] = r
	}
	return out
}
