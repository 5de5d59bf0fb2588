package persistence

import (
	"context"

	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	appordering "github.com/shopfront/backend/internal/application/ordering"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/ordering"
	"gorm.io/gorm"
)

// GormTransactionScope runs order placement inside one GORM transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// including when ctx is cancelled mid-flight.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appordering.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTransactionalRepositories{tx: tx})
	})
}

// InProductTransaction runs fn against a product repository bound to one
// transaction. Used for catalog edits that must not race order placement.
func (s *GormTransactionScope) InProductTransaction(ctx context.Context, fn func(products catalog.ProductRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormProductRepository(tx))
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r gormTransactionalRepositories) OrderRepo() ordering.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

var (
	_ appordering.TransactionScope          = (*GormTransactionScope)(nil)
	_ appcatalog.ProductTransactor          = (*GormTransactionScope)(nil)
	_ appordering.TransactionalRepositories = gormTransactionalRepositories{}
)
