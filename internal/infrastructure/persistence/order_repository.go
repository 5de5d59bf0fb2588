package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements the order ledger: inserts inside the
// placement transaction and the role-scoped read views.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var (
	_ ordering.OrderRepository      = (*GormOrderRepository)(nil)
	_ ordering.OrderQueryRepository = (*GormOrderRepository)(nil)
)

func (r *GormOrderRepository) InsertOrder(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error
}

func (r *GormOrderRepository) ListAll(ctx context.Context) ([]ordering.OrderView, error) {
	return r.list(r.views(ctx))
}

// ListBySeller matches on the product's current seller, so orders for a
// deleted product drop out of every seller's view.
func (r *GormOrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]ordering.OrderView, error) {
	return r.list(r.views(ctx).Where("p.seller_id = ?", sellerID))
}

func (r *GormOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]ordering.OrderView, error) {
	return r.list(r.views(ctx).Where("o.buyer_id = ?", buyerID))
}

// views joins every order with its product, buyer and seller. Products and
// sellers are LEFT JOINed because either may be gone.
func (r *GormOrderRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders AS o").
		Select(`o.id, o.buyer_id, o.product_id, o.quantity, o.placed_at,
			p.name AS product_name, p.price AS product_price,
			b.username AS buyer_username,
			p.seller_id, s.username AS seller_username`).
		Joins("LEFT JOIN products AS p ON p.id = o.product_id").
		Joins("LEFT JOIN accounts AS b ON b.id = o.buyer_id").
		Joins("LEFT JOIN accounts AS s ON s.id = p.seller_id")
}

type orderViewRow struct {
	ID             uuid.UUID
	BuyerID        uuid.UUID
	ProductID      uuid.UUID
	Quantity       int
	PlacedAt       time.Time
	ProductName    *string
	ProductPrice   decimal.NullDecimal
	BuyerUsername  *string
	SellerID       *uuid.UUID
	SellerUsername *string
}

func (r *GormOrderRepository) list(query *gorm.DB) ([]ordering.OrderView, error) {
	var rows []orderViewRow
	if err := query.Order("o.placed_at DESC, o.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]ordering.OrderView, 0, len(rows))
	for _, row := range rows {
		v := ordering.OrderView{
			ID:             row.ID,
			BuyerID:        row.BuyerID,
			ProductID:      row.ProductID,
			Quantity:       row.Quantity,
			PlacedAt:       row.PlacedAt.UTC(),
			ProductName:    row.ProductName,
			BuyerUsername:  row.BuyerUsername,
			SellerID:       row.SellerID,
			SellerUsername: row.SellerUsername,
		}
		if row.ProductPrice.Valid {
			price := row.ProductPrice.Decimal
			v.ProductPrice = &price
		}
		views = append(views, v)
	}
	return views, nil
}
