package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with an on-hand stock count.
// It is the aggregate root for the Catalog Store.
type Product struct {
	shared.BaseAggregateRoot
	Name     string
	Price    decimal.Decimal
	Stock    int
	SellerID *uuid.UUID
}

// NewProduct creates a new product. sellerID may be nil for house products.
func NewProduct(name string, price decimal.Decimal, stock int, sellerID *uuid.UUID) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(stock); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		Stock:             stock,
		SellerID:          sellerID,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Debit removes quantity units from stock. The product is left untouched
// when the request is not positive or exceeds what is on hand.
func (p *Product) Debit(quantity int) error {
	if quantity <= 0 {
		return shared.ErrInvalidInput.WithMessage("Quantity must be a positive integer")
	}
	if p.Stock < quantity {
		return shared.ErrInsufficientStock.WithMessage("Only %d units of %s in stock", p.Stock, p.Name)
	}
	p.Stock -= quantity
	p.Touch()
	return nil
}

// HasStock reports whether quantity units can be taken
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// UpdatePrice replaces the unit price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	old := p.Price
	p.Price = price
	p.Touch()
	if !old.Equal(price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, old))
	}
	return nil
}

// SetStock overwrites the on-hand count, used for restocking
func (p *Product) SetStock(stock int) error {
	if err := validateStock(stock); err != nil {
		return err
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// IsOwnedBy reports whether the product is listed by sellerID
func (p *Product) IsOwnedBy(sellerID uuid.UUID) bool {
	return p.SellerID != nil && *p.SellerID == sellerID
}

func validateProductName(name string) error {
	if name == "" {
		return shared.ErrInvalidInput.WithMessage("Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.ErrInvalidInput.WithMessage("Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("Price cannot be negative")
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 {
		return shared.ErrInvalidInput.WithMessage("Stock cannot be negative")
	}
	return nil
}
