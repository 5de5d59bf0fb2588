package catalog

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewProduct(t *testing.T) {
	sellerID := uuid.New()

	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("  Widget ", decimal.NewFromFloat(9.99), 5, &sellerID)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.Equal(t, "Widget", product.Name)
		assert.True(t, product.Price.Equal(decimal.NewFromFloat(9.99)))
		assert.Equal(t, 5, product.Stock)
		assert.True(t, product.IsOwnedBy(sellerID))
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct("Widget", decimal.Zero, 0, nil)
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
		created, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, product.ID, created.ProductID)
		assert.Nil(t, created.SellerID)
	})

	t.Run("house product has no owner", func(t *testing.T) {
		product, err := NewProduct("Widget", decimal.Zero, 0, nil)
		require.NoError(t, err)
		assert.False(t, product.IsOwnedBy(sellerID))
	})

	tests := []struct {
		name  string
		pname string
		price decimal.Decimal
		stock int
	}{
		{"empty name", "   ", decimal.Zero, 1},
		{"negative price", "Widget", decimal.NewFromInt(-1), 1},
		{"negative stock", "Widget", decimal.Zero, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProduct(tt.pname, tt.price, tt.stock, nil)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestProduct_Debit(t *testing.T) {
	newProduct := func(stock int) *Product {
		p, err := NewProduct("Widget", decimal.NewFromInt(3), stock, nil)
		require.NoError(t, err)
		return p
	}

	t.Run("decrements stock", func(t *testing.T) {
		p := newProduct(5)
		require.NoError(t, p.Debit(3))
		assert.Equal(t, 2, p.Stock)
	})

	t.Run("exact stock leaves zero", func(t *testing.T) {
		p := newProduct(2)
		require.NoError(t, p.Debit(2))
		assert.Equal(t, 0, p.Stock)
	})

	t.Run("insufficient stock leaves product untouched", func(t *testing.T) {
		p := newProduct(2)
		err := p.Debit(3)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, 2, p.Stock)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		p := newProduct(2)
		assert.True(t, errors.Is(p.Debit(0), shared.ErrInvalidInput))
		assert.True(t, errors.Is(p.Debit(-1), shared.ErrInvalidInput))
		assert.Equal(t, 2, p.Stock)
	})
}

func TestProduct_DebitNeverGoesNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.IntRange(0, 50).Draw(rt, "initial")
		p, err := NewProduct("Widget", decimal.Zero, initial, nil)
		if err != nil {
			rt.Fatalf("new product: %v", err)
		}

		debited := 0
		requests := rapid.SliceOf(rapid.IntRange(-2, 10)).Draw(rt, "requests")
		for _, q := range requests {
			before := p.Stock
			if err := p.Debit(q); err != nil {
				if p.Stock != before {
					rt.Fatalf("failed debit of %d changed stock %d -> %d", q, before, p.Stock)
				}
				continue
			}
			debited += q
		}

		if p.Stock < 0 {
			rt.Fatalf("stock went negative: %d", p.Stock)
		}
		if p.Stock+debited != initial {
			rt.Fatalf("units not conserved: stock %d + debited %d != %d", p.Stock, debited, initial)
		}
	})
}

func TestProduct_UpdatePrice(t *testing.T) {
	p, err := NewProduct("Widget", decimal.NewFromInt(3), 1, nil)
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.UpdatePrice(decimal.NewFromInt(4)))
	require.Len(t, p.GetDomainEvents(), 1)
	changed := p.GetDomainEvents()[0].(*ProductPriceChangedEvent)
	assert.True(t, changed.OldPrice.Equal(decimal.NewFromInt(3)))
	assert.True(t, changed.NewPrice.Equal(decimal.NewFromInt(4)))

	require.NoError(t, p.UpdatePrice(decimal.NewFromInt(4)))
	assert.Len(t, p.GetDomainEvents(), 1, "unchanged price records no event")

	assert.True(t, errors.Is(p.UpdatePrice(decimal.NewFromInt(-1)), shared.ErrInvalidInput))
}

func TestProduct_SetStock(t *testing.T) {
	p, err := NewProduct("Widget", decimal.Zero, 1, nil)
	require.NoError(t, err)

	require.NoError(t, p.SetStock(10))
	assert.Equal(t, 10, p.Stock)
	assert.True(t, errors.Is(p.SetStock(-1), shared.ErrInvalidInput))
	assert.Equal(t, 10, p.Stock)
}
