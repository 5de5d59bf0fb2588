package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsClaimed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func newMemoryStore(t *testing.T) shared.IdempotencyStore {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdempotentHandler_HandlesEachEventOnce(t *testing.T) {
	inner := newTestHandler("OrderPlaced")
	h := NewIdempotentHandler(inner, newMemoryStore(t), shared.DefaultIdempotencyConfig(), nil)
	ev := newTestEvent("OrderPlaced")

	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), newTestEvent("OrderPlaced")))

	assert.Equal(t, 2, inner.count())
}

func TestIdempotentHandler_HandlerErrorReleasesClaim(t *testing.T) {
	inner := newTestHandler("OrderPlaced")
	inner.err = errors.New("transient")
	h := NewIdempotentHandler(inner, newMemoryStore(t), shared.DefaultIdempotencyConfig(), nil)
	ev := newTestEvent("OrderPlaced")

	require.Error(t, h.Handle(context.Background(), ev))

	inner.err = nil
	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 2, inner.count())
}

func TestIdempotentHandler_StoreErrorStillHandles(t *testing.T) {
	store := new(MockIdempotencyStore)
	ev := newTestEvent("OrderPlaced")
	key := "event:" + ev.EventID().String()
	store.On("Claim", mock.Anything, key, time.Hour).Return(false, errors.New("redis down"))

	inner := newTestHandler("OrderPlaced")
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{TTL: time.Hour}, nil)

	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_ZeroTTLUsesDefault(t *testing.T) {
	store := new(MockIdempotencyStore)
	store.On("Claim", mock.Anything, mock.Anything, 24*time.Hour).Return(true, nil)

	h := NewIdempotentHandler(newTestHandler(), store, shared.IdempotencyConfig{}, nil)
	require.NoError(t, h.Handle(context.Background(), newTestEvent("OrderPlaced")))

	store.AssertExpectations(t)
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	h := NewIdempotentHandler(newTestHandler("OrderPlaced"), new(MockIdempotencyStore), shared.DefaultIdempotencyConfig(), nil)
	assert.Equal(t, []string{"OrderPlaced"}, h.EventTypes())
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	inner := newTestHandler("OrderPlaced")
	h := NewIdempotentHandler(inner, newMemoryStore(t), shared.DefaultIdempotencyConfig(), nil)
	ev := newTestEvent("OrderPlaced")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(context.Background(), ev)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inner.count())
}
