package catalog

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductInput contains the fields for a new product listing
type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
	// SellerID is honoured for admins only; sellers always list as themselves
	SellerID *uuid.UUID
}

// UpdateProductInput carries the fields to change. Nil means unchanged.
type UpdateProductInput struct {
	Price *decimal.Decimal
	Stock *int
}

// ListProductsInput narrows a product listing
type ListProductsInput struct {
	SortBy    string
	SortOrder string
}

// ProductInfo is the public view of a product
type ProductInfo struct {
	ID             uuid.UUID
	Name           string
	Price          decimal.Decimal
	Stock          int
	SellerID       *uuid.UUID
	SellerUsername *string
}

func toProductInfo(p *catalog.Product, sellerUsername *string) ProductInfo {
	return ProductInfo{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Stock:          p.Stock,
		SellerID:       p.SellerID,
		SellerUsername: sellerUsername,
	}
}

func fromListing(l catalog.ProductListing) ProductInfo {
	return ProductInfo{
		ID:             l.ID,
		Name:           l.Name,
		Price:          l.Price,
		Stock:          l.Stock,
		SellerID:       l.SellerID,
		SellerUsername: l.SellerUsername,
	}
}
