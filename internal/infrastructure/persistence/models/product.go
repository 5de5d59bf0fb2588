package models

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel maps the products table. stock carries CHECK (stock >= 0)
// in the migration.
type ProductModel struct {
	BaseModel
	Name     string          `gorm:"type:varchar(200);not null;index"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock    int             `gorm:"not null;check:stock >= 0"`
	SellerID *uuid.UUID      `gorm:"type:uuid;index"`
}

func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the row to a Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.toAggregate(),
		Name:              m.Name,
		Price:             m.Price,
		Stock:             m.Stock,
		SellerID:          m.SellerID,
	}
}

// ProductModelFromDomain builds a row from a Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		SellerID: p.SellerID,
	}
	m.fromEntity(p.BaseEntity)
	return m
}
