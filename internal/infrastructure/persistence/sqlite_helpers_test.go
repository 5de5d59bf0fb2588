package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newSQLiteDB opens a private in-memory database with the schema applied.
// A single connection serializes transactions the way a row lock would.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(sqlite.Open(dsn), nil)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.DB.AutoMigrate(models.All()...))
	return db.DB
}

func seedAccount(t *testing.T, db *gorm.DB, username string, role identity.Role) *identity.Account {
	t.Helper()
	// bcrypt at cost 12 is slow; rows only need a hash-shaped value.
	a := &identity.Account{Username: username, PasswordHash: "$2a$04$placeholder", Role: role}
	a.BaseAggregateRoot = shared.NewBaseAggregateRoot()
	require.NoError(t, NewGormAccountRepository(db).Create(context.Background(), a))
	return a
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int, seller *identity.Account) *catalog.Product {
	t.Helper()
	var sellerID *uuid.UUID
	if seller != nil {
		sellerID = &seller.ID
	}
	p, err := catalog.NewProduct(name, decimal.RequireFromString(price), stock, sellerID)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), p))
	return p
}

func seedOrder(t *testing.T, db *gorm.DB, buyer *identity.Account, productID uuid.UUID, qty int, at time.Time) *ordering.Order {
	t.Helper()
	o, err := ordering.NewOrder(buyer.ID, productID, qty, at)
	require.NoError(t, err)
	require.NoError(t, NewGormOrderRepository(db).InsertOrder(context.Background(), o))
	return o
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	p, err := NewGormProductRepository(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
