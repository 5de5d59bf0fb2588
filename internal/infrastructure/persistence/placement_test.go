package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appordering "github.com/shopfront/backend/internal/application/ordering"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPlacement_ConcurrentBuyersNeverOversell(t *testing.T) {
	const stock, buyers = 7, 30
	db := newSQLiteDB(t)
	svc := appordering.NewPlacementService(NewGormTransactionScope(db), 10*time.Second, nil)
	product := seedProduct(t, db, "Limited Print", "25.00", stock, nil)

	accounts := make([]*identity.Account, buyers)
	for i := range accounts {
		accounts[i] = seedAccount(t, db, "buyer"+uuid.NewString()[:8], identity.RoleCustomer)
	}
	// The pool's own goroutines predate this point and outlive the test body.
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var placed, rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, a := range accounts {
		wg.Add(1)
		go func(a *identity.Account) {
			defer wg.Done()
			<-start
			_, err := svc.PlaceOrder(context.Background(), *a, product.ID, 1)
			switch {
			case err == nil:
				placed.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(a)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, stock, placed.Load())
	assert.EqualValues(t, buyers-stock, rejected.Load())
	assert.Zero(t, stockOf(t, db, product.ID))

	views, err := NewGormOrderRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, views, stock)
}

func TestPlacement_SequentialScenario(t *testing.T) {
	db := newSQLiteDB(t)
	svc := appordering.NewPlacementService(NewGormTransactionScope(db), 0, nil)
	buyer := seedAccount(t, db, "customer1", identity.RoleCustomer)
	p := seedProduct(t, db, "Teapot", "12.00", 5, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, *buyer, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, stockOf(t, db, p.ID))

	_, err = svc.PlaceOrder(ctx, *buyer, p.ID, 3)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 2, stockOf(t, db, p.ID))

	order, err := svc.PlaceOrder(ctx, *buyer, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, db, p.ID))

	views, err := NewGormOrderRepository(db).ListByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, order.ID, views[0].ID)
}

func TestPlacement_MissingProductWritesNothing(t *testing.T) {
	db := newSQLiteDB(t)
	svc := appordering.NewPlacementService(NewGormTransactionScope(db), 0, nil)
	buyer := seedAccount(t, db, "customer1", identity.RoleCustomer)

	_, err := svc.PlaceOrder(context.Background(), *buyer, uuid.New(), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	views, err := NewGormOrderRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestPlacement_CommitFailureIsStorageError(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := appordering.NewPlacementService(NewGormTransactionScope(db), time.Second, nil)
	buyer := identity.Account{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Username: "c", Role: identity.RoleCustomer}
	productID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productID.String(), now, now, "Widget", "2", 4, nil))
	mock.ExpectExec(`UPDATE "products" SET "stock"=\$1,"updated_at"=\$2 WHERE id = \$3 AND stock = \$4`).
		WithArgs(3, sqlmock.AnyArg(), productID, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
	commitErr := errors.New("server closed the connection unexpectedly")
	mock.ExpectCommit().WillReturnError(commitErr)

	order, err := svc.PlaceOrder(context.Background(), buyer, productID, 1)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, shared.ErrStorage)
	assert.ErrorIs(t, err, commitErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlacement_RollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockGorm(t)
	svc := appordering.NewPlacementService(NewGormTransactionScope(db), time.Second, nil)
	buyer := identity.Account{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Username: "c", Role: identity.RoleCustomer}
	productID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productID.String(), now, now, "Widget", "2", 4, nil))
	mock.ExpectExec(`UPDATE "products"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "orders"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), buyer, productID, 1)

	assert.ErrorIs(t, err, shared.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
