package ordering

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func testAccount(role identity.Role) identity.Account {
	return identity.Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          "user-" + string(role),
		Role:              role,
	}
}

func testProduct(t *testing.T, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Widget", decimal.NewFromInt(10), stock, nil)
	require.NoError(t, err)
	return p
}

func TestNewPlacementService(t *testing.T) {
	service := NewPlacementService(newMemoryStore(), 0, nil)
	assert.Equal(t, DefaultPlacementTimeout, service.timeout)
	assert.NotNil(t, service.logger)
}

func TestPlacementService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	buyer := testAccount(identity.RoleCustomer)
	fixedNow := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success decrements stock and inserts order", func(t *testing.T) {
		scope := newMockTransactionScope()
		product := testProduct(t, 5)

		scope.On("Execute", mock.Anything).Return(nil).Once()
		scope.products.On("GetProductForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		scope.products.On("SetStock", mock.Anything, product.ID, 2, 5).Return(nil).Once()
		scope.orders.On("InsertOrder", mock.Anything, mock.MatchedBy(func(o *ordering.Order) bool {
			return o.BuyerID == buyer.ID && o.ProductID == product.ID && o.Quantity == 3 && o.PlacedAt.Equal(fixedNow)
		})).Return(nil).Once()

		publisher := &MockEventPublisher{}
		metrics := &recordingMetrics{}
		service := NewPlacementService(scope, time.Second, zap.NewNop())
		service.SetClock(func() time.Time { return fixedNow })
		service.SetEventPublisher(publisher)
		service.SetMetrics(metrics)

		order, err := service.PlaceOrder(ctx, buyer, product.ID, 3)

		require.NoError(t, err)
		assert.Equal(t, 3, order.Quantity)
		assert.Equal(t, fixedNow, order.PlacedAt)
		scope.AssertExpectations(t)
		scope.products.AssertExpectations(t)
		scope.orders.AssertExpectations(t)

		events := publisher.Events()
		require.Len(t, events, 1)
		placed, ok := events[0].(*ordering.OrderPlacedEvent)
		require.True(t, ok)
		assert.Equal(t, order.ID, placed.OrderID)
		assert.Equal(t, 2, placed.RemainingStock)

		assert.Equal(t, []string{OutcomePlaced}, metrics.outcomes())
	})

	t.Run("non-customer is forbidden without storage access", func(t *testing.T) {
		for _, role := range []identity.Role{identity.RoleSeller, identity.RoleAdmin} {
			scope := newMockTransactionScope()
			service := NewPlacementService(scope, time.Second, zap.NewNop())

			order, err := service.PlaceOrder(ctx, testAccount(role), uuid.New(), 1)

			assert.Nil(t, order)
			assert.True(t, errors.Is(err, shared.ErrForbidden), "role %s", role)
			scope.AssertNotCalled(t, "Execute", mock.Anything)
		}
	})

	t.Run("non-positive quantity is invalid without storage access", func(t *testing.T) {
		for _, q := range []int{0, -1, -100} {
			scope := newMockTransactionScope()
			service := NewPlacementService(scope, time.Second, zap.NewNop())

			_, err := service.PlaceOrder(ctx, buyer, uuid.New(), q)

			assert.True(t, errors.Is(err, shared.ErrInvalidInput), "quantity %d", q)
			scope.AssertNotCalled(t, "Execute", mock.Anything)
		}
	})

	t.Run("role is checked before quantity", func(t *testing.T) {
		scope := newMockTransactionScope()
		service := NewPlacementService(scope, time.Second, zap.NewNop())

		_, err := service.PlaceOrder(ctx, testAccount(identity.RoleSeller), uuid.New(), 0)
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})

	t.Run("missing product", func(t *testing.T) {
		scope := newMockTransactionScope()
		productID := uuid.New()
		scope.On("Execute", mock.Anything).Return(nil).Once()
		scope.products.On("GetProductForUpdate", mock.Anything, productID).Return(nil, shared.ErrNotFound).Once()

		service := NewPlacementService(scope, time.Second, zap.NewNop())
		_, err := service.PlaceOrder(ctx, buyer, productID, 1)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		scope.products.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		scope.orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
	})

	t.Run("insufficient stock writes nothing", func(t *testing.T) {
		scope := newMockTransactionScope()
		product := testProduct(t, 2)
		scope.On("Execute", mock.Anything).Return(nil).Once()
		scope.products.On("GetProductForUpdate", mock.Anything, product.ID).Return(product, nil).Once()

		metrics := &recordingMetrics{}
		service := NewPlacementService(scope, time.Second, zap.NewNop())
		service.SetMetrics(metrics)

		_, err := service.PlaceOrder(ctx, buyer, product.ID, 3)

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		scope.products.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		scope.orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
		assert.Equal(t, []string{"INSUFFICIENT_STOCK"}, metrics.outcomes())
	})

	t.Run("commit failure surfaces as storage error", func(t *testing.T) {
		scope := newMockTransactionScope()
		product := testProduct(t, 5)
		commitErr := errors.New("pq: could not serialize access")
		scope.On("Execute", mock.Anything).Return(commitErr).Once()
		scope.products.On("GetProductForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		scope.products.On("SetStock", mock.Anything, product.ID, 4, 5).Return(nil).Once()
		scope.orders.On("InsertOrder", mock.Anything, mock.Anything).Return(nil).Once()

		publisher := &MockEventPublisher{}
		service := NewPlacementService(scope, time.Second, zap.NewNop())
		service.SetEventPublisher(publisher)

		order, err := service.PlaceOrder(ctx, buyer, product.ID, 1)

		assert.Nil(t, order)
		assert.True(t, errors.Is(err, shared.ErrStorage))
		assert.True(t, errors.Is(err, commitErr))
		assert.Empty(t, publisher.Events(), "no event for an uncommitted order")
	})

	t.Run("deadline surfaces as timeout", func(t *testing.T) {
		scope := newMockTransactionScope()
		product := testProduct(t, 5)
		scope.On("Execute", mock.Anything).Return(nil).Once()
		scope.products.On("GetProductForUpdate", mock.Anything, product.ID).
			Return(nil, context.DeadlineExceeded).Once()

		service := NewPlacementService(scope, time.Millisecond, zap.NewNop())
		_, err := service.PlaceOrder(ctx, buyer, product.ID, 1)

		assert.True(t, errors.Is(err, shared.ErrTimeout))
	})

	t.Run("stock changed under a non-locking store", func(t *testing.T) {
		scope := newMockTransactionScope()
		product := testProduct(t, 5)
		scope.On("Execute", mock.Anything).Return(nil).Once()
		scope.products.On("GetProductForUpdate", mock.Anything, product.ID).Return(product, nil).Once()
		scope.products.On("SetStock", mock.Anything, product.ID, 4, 5).Return(shared.ErrConcurrencyConflict).Once()

		service := NewPlacementService(scope, time.Second, zap.NewNop())
		_, err := service.PlaceOrder(ctx, buyer, product.ID, 1)

		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		scope.orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail a committed order", func(t *testing.T) {
		product := testProduct(t, 1)
		store := newMemoryStore(product)
		core, logs := observer.New(zapcore.WarnLevel)

		service := NewPlacementService(store, time.Second, zap.New(core))
		service.SetEventPublisher(&MockEventPublisher{err: errors.New("bus stopped")})

		_, err := service.PlaceOrder(ctx, buyer, product.ID, 1)

		require.NoError(t, err)
		assert.Equal(t, 0, store.stock(product.ID))
		assert.Equal(t, 1, logs.FilterMessage("Failed to publish order event").Len())
	})
}

func TestPlacementService_Scenario(t *testing.T) {
	ctx := context.Background()
	buyer := testAccount(identity.RoleCustomer)
	product := testProduct(t, 5)
	store := newMemoryStore(product)
	service := NewPlacementService(store, time.Second, zap.NewNop())

	_, err := service.PlaceOrder(ctx, buyer, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, store.stock(product.ID))

	_, err = service.PlaceOrder(ctx, buyer, product.ID, 3)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, 2, store.stock(product.ID))

	_, err = service.PlaceOrder(ctx, buyer, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, store.stock(product.ID))
	assert.Equal(t, 2, store.orderCount())
}

func TestPlacementService_ConcurrentOrders(t *testing.T) {
	defer goleak.VerifyNone(t)

	const (
		stock   = 10
		callers = 50
	)
	ctx := context.Background()
	product := testProduct(t, stock)
	store := newMemoryStore(product)
	service := NewPlacementService(store, 5*time.Second, zap.NewNop())

	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int32
		insufficient atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := service.PlaceOrder(ctx, testAccount(identity.RoleCustomer), product.ID, 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(stock), succeeded.Load())
	assert.Equal(t, int32(callers-stock), insufficient.Load())
	assert.Equal(t, 0, store.stock(product.ID))
	assert.Equal(t, stock, store.orderCount())
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomePlaced, OutcomeOf(nil))
	assert.Equal(t, "NOT_FOUND", OutcomeOf(shared.ErrNotFound))
	assert.Equal(t, "TIMEOUT", OutcomeOf(shared.WrapStorage(context.DeadlineExceeded)))
	assert.Equal(t, "STORAGE_ERROR", OutcomeOf(errors.New("boom")))
}
