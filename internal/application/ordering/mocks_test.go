package ordering

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id uuid.UUID, newStock, expectedCurrent int) error {
	return m.Called(ctx, id, newStock, expectedCurrent).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.ProductListing, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ProductListing), args.Error(1)
}

// MockOrderRepository is a mock implementation of ordering.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) InsertOrder(ctx context.Context, order *ordering.Order) error {
	return m.Called(ctx, order).Error(0)
}

// MockOrderQueryRepository is a mock implementation of ordering.OrderQueryRepository
type MockOrderQueryRepository struct {
	mock.Mock
}

func (m *MockOrderQueryRepository) ListAll(ctx context.Context) ([]ordering.OrderView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.OrderView), args.Error(1)
}

func (m *MockOrderQueryRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]ordering.OrderView, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.OrderView), args.Error(1)
}

func (m *MockOrderQueryRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]ordering.OrderView, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.OrderView), args.Error(1)
}

// MockTransactionScope runs fn against mock repositories and can simulate
// a commit failure through the recorded return value.
type MockTransactionScope struct {
	mock.Mock
	products *MockProductRepository
	orders   *MockOrderRepository
}

func newMockTransactionScope() *MockTransactionScope {
	return &MockTransactionScope{
		products: new(MockProductRepository),
		orders:   new(MockOrderRepository),
	}
}

func (s *MockTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	args := s.Called(ctx)
	if err := fn(s); err != nil {
		return err
	}
	return args.Error(0)
}

func (s *MockTransactionScope) ProductRepo() catalog.ProductRepository { return s.products }
func (s *MockTransactionScope) OrderRepo() ordering.OrderRepository    { return s.orders }

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return m.err
}

func (m *MockEventPublisher) Events() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shared.DomainEvent(nil), m.events...)
}

type placementRecord struct {
	outcome  string
	duration time.Duration
}

// recordingMetrics captures RecordPlacement calls
type recordingMetrics struct {
	mu      sync.Mutex
	records []placementRecord
}

func (r *recordingMetrics) RecordPlacement(_ context.Context, outcome string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, placementRecord{outcome: outcome, duration: duration})
}

func (r *recordingMetrics) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.outcome)
	}
	return out
}

// memoryStore is an in-memory catalog and ledger whose Execute serializes
// transactions and restores a snapshot when fn fails.
type memoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	orders   []ordering.Order
}

func newMemoryStore(products ...*catalog.Product) *memoryStore {
	s := &memoryStore{products: make(map[uuid.UUID]catalog.Product)}
	for _, p := range products {
		s.products[p.ID] = *p
	}
	return s
}

func (s *memoryStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := make(map[uuid.UUID]catalog.Product, len(s.products))
	for k, v := range s.products {
		snapshot[k] = v
	}
	orderCount := len(s.orders)

	if err := fn(memoryRepos{s}); err != nil {
		s.products = snapshot
		s.orders = s.orders[:orderCount]
		return err
	}
	return nil
}

func (s *memoryStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memoryStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type memoryRepos struct{ s *memoryStore }

func (r memoryRepos) ProductRepo() catalog.ProductRepository { return memoryProducts(r) }
func (r memoryRepos) OrderRepo() ordering.OrderRepository    { return memoryOrders(r) }

type memoryProducts struct{ s *memoryStore }

func (r memoryProducts) Create(_ context.Context, p *catalog.Product) error {
	r.s.products[p.ID] = *p
	return nil
}

func (r memoryProducts) GetByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r memoryProducts) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.GetByID(ctx, id)
}

func (r memoryProducts) SetStock(_ context.Context, id uuid.UUID, newStock, expectedCurrent int) error {
	p, ok := r.s.products[id]
	if !ok || p.Stock != expectedCurrent {
		return shared.ErrConcurrencyConflict
	}
	p.Stock = newStock
	r.s.products[id] = p
	return nil
}

func (r memoryProducts) Update(_ context.Context, p *catalog.Product) error {
	r.s.products[p.ID] = *p
	return nil
}

func (r memoryProducts) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.products, id)
	return nil
}

func (r memoryProducts) List(context.Context, catalog.ProductFilter) ([]catalog.ProductListing, error) {
	return nil, nil
}

type memoryOrders struct{ s *memoryStore }

func (r memoryOrders) InsertOrder(_ context.Context, o *ordering.Order) error {
	r.s.orders = append(r.s.orders, *o)
	return nil
}
