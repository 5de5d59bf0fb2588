package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error
}

func (r *GormProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetProductForUpdate issues SELECT ... FOR UPDATE. It only serializes
// writers when r is bound to a transaction; SQLite drops the clause and
// relies on its database-level write lock instead.
func (r *GormProductRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormProductRepository) get(db *gorm.DB, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormProductRepository) SetStock(ctx context.Context, id uuid.UUID, newStock, expectedCurrent int) error {
	if newStock < 0 {
		return shared.ErrInvalidInput.WithMessage("Stock cannot be negative")
	}
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND stock = ?", id, expectedCurrent).
		Updates(map[string]any{
			"stock":      newStock,
			"updated_at": r.db.NowFunc(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Stock of product %s changed concurrently", id)
	}
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"price":      product.Price,
			"stock":      product.Stock,
			"updated_at": product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type productListingRow struct {
	ID             uuid.UUID
	Name           string
	Price          decimal.Decimal
	Stock          int
	SellerID       *uuid.UUID
	SellerUsername *string
}

func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.ProductListing, error) {
	query := r.db.WithContext(ctx).
		Table("products AS p").
		Select("p.id, p.name, p.price, p.stock, p.seller_id, a.username AS seller_username").
		Joins("LEFT JOIN accounts AS a ON a.id = p.seller_id")
	if filter.SellerID != nil {
		query = query.Where("p.seller_id = ?", *filter.SellerID)
	}

	var rows []productListingRow
	if err := query.Order(productOrder(filter.SortBy, filter.SortOrder)).Scan(&rows).Error; err != nil {
		return nil, err
	}

	listings := make([]catalog.ProductListing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, catalog.ProductListing{
			ID:             row.ID,
			Name:           row.Name,
			Price:          row.Price,
			Stock:          row.Stock,
			SellerID:       row.SellerID,
			SellerUsername: row.SellerUsername,
		})
	}
	return listings, nil
}
