package handler

import (
	"github.com/google/uuid"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to list a new product
type CreateProductRequest struct {
	Name     string           `json:"name" binding:"required,min=1,max=200"`
	Price    *decimal.Decimal `json:"price" binding:"required" swaggertype:"string" example:"19.99"`
	Stock    *int             `json:"stock" binding:"required" example:"10"`
	SellerID *uuid.UUID       `json:"seller_id"`
}

// UpdateProductRequest changes price and/or stock; omitted fields are kept
type UpdateProductRequest struct {
	Price *decimal.Decimal `json:"price" swaggertype:"string" example:"17.50"`
	Stock *int             `json:"stock" example:"25"`
}

// ListProductsQuery are the product listing query parameters
type ListProductsQuery struct {
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name price stock"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price" swaggertype:"string" example:"19.99"`
	Stock          int             `json:"stock"`
	SellerID       *uuid.UUID      `json:"seller_id"`
	SellerUsername *string         `json:"seller_username"`
}

func toProductResponse(p appcatalog.ProductInfo) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Stock:          p.Stock,
		SellerID:       p.SellerID,
		SellerUsername: p.SellerUsername,
	}
}

func toProductResponses(infos []appcatalog.ProductInfo) []ProductResponse {
	out := make([]ProductResponse, len(infos))
	for i, p := range infos {
		out[i] = toProductResponse(p)
	}
	return out
}
