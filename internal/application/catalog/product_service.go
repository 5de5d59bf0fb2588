package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductTransactor runs fn with a product repository bound to a single
// transaction, so that a row locked with GetProductForUpdate stays locked
// until fn returns.
type ProductTransactor interface {
	InProductTransaction(ctx context.Context, fn func(products catalog.ProductRepository) error) error
}

// ProductService handles product listing and maintenance. Ownership rules:
// sellers manage only their own products, admins manage all of them.
type ProductService struct {
	products       catalog.ProductRepository
	accounts       identity.AccountRepository
	tx             ProductTransactor
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	products catalog.ProductRepository,
	accounts identity.AccountRepository,
	tx ProductTransactor,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products: products,
		accounts: accounts,
		tx:       tx,
		logger:   logger,
	}
}

// SetEventPublisher sets the publisher for product events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns products joined with their seller's username. A seller only
// sees their own listings; anyone else, anonymous callers included, sees all.
func (s *ProductService) List(ctx context.Context, requester *identity.Account, input ListProductsInput) ([]ProductInfo, error) {
	filter := catalog.ProductFilter{
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
	}
	if requester != nil && requester.Role == identity.RoleSeller {
		id := requester.ID
		filter.SellerID = &id
	}

	listings, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, shared.WrapStorage(err)
	}

	infos := make([]ProductInfo, 0, len(listings))
	for _, l := range listings {
		infos = append(infos, fromListing(l))
	}
	return infos, nil
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, shared.WrapStorage(err)
	}
	info := toProductInfo(product, s.sellerUsername(ctx, product.SellerID))
	return &info, nil
}

// Create lists a new product. Sellers always list as themselves; admins may
// name any seller account or leave the product without one.
func (s *ProductService) Create(ctx context.Context, requester identity.Account, input CreateProductInput) (*ProductInfo, error) {
	if !requester.Role.CanManageProducts() {
		return nil, shared.ErrForbidden.WithMessage("Only sellers and admins can add products")
	}

	sellerID := input.SellerID
	var sellerUsername *string
	switch requester.Role {
	case identity.RoleSeller:
		id := requester.ID
		sellerID = &id
		name := requester.Username
		sellerUsername = &name
	case identity.RoleAdmin:
		if sellerID != nil {
			seller, err := s.accounts.GetByID(ctx, *sellerID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, shared.ErrInvalidInput.WithMessage("Seller %s does not exist", sellerID)
				}
				return nil, shared.WrapStorage(err)
			}
			if seller.Role != identity.RoleSeller {
				return nil, shared.ErrInvalidInput.WithMessage("Account %s is not a seller", seller.Username)
			}
			sellerUsername = &seller.Username
		}
	}

	product, err := catalog.NewProduct(input.Name, input.Price, input.Stock, sellerID)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, shared.WrapStorage(err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("requester_id", requester.ID.String()),
		zap.Int("stock", product.Stock))
	s.publishEvents(ctx, product)

	info := toProductInfo(product, sellerUsername)
	return &info, nil
}

// Update changes price and/or stock. The row is locked for the duration so
// a concurrent order placement cannot be overwritten.
func (s *ProductService) Update(ctx context.Context, requester identity.Account, id uuid.UUID, input UpdateProductInput) (*ProductInfo, error) {
	if input.Price == nil && input.Stock == nil {
		return nil, shared.ErrInvalidInput.WithMessage("Nothing to update: provide price or stock")
	}
	if !requester.Role.CanManageProducts() {
		return nil, shared.ErrForbidden.WithMessage("Only sellers and admins can edit products")
	}

	var updated *catalog.Product
	err := s.tx.InProductTransaction(ctx, func(products catalog.ProductRepository) error {
		product, err := products.GetProductForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := authorizeOwner(requester, product); err != nil {
			return err
		}
		if input.Price != nil {
			if err := product.UpdatePrice(*input.Price); err != nil {
				return err
			}
		}
		if input.Stock != nil {
			if err := product.SetStock(*input.Stock); err != nil {
				return err
			}
		}
		if err := products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, shared.WrapStorage(err)
	}

	s.logger.Info("Product updated",
		zap.String("product_id", id.String()),
		zap.String("requester_id", requester.ID.String()))
	s.publishEvents(ctx, updated)

	info := toProductInfo(updated, s.sellerUsername(ctx, updated.SellerID))
	return &info, nil
}

// Delete removes a product. Existing orders keep their product_id.
func (s *ProductService) Delete(ctx context.Context, requester identity.Account, id uuid.UUID) error {
	if !requester.Role.CanManageProducts() {
		return shared.ErrForbidden.WithMessage("Only sellers and admins can delete products")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return shared.WrapStorage(err)
	}
	if err := authorizeOwner(requester, product); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return shared.WrapStorage(err)
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", id.String()),
		zap.String("requester_id", requester.ID.String()))
	return nil
}

func authorizeOwner(requester identity.Account, product *catalog.Product) error {
	if requester.Role == identity.RoleAdmin {
		return nil
	}
	if requester.Role == identity.RoleSeller && product.IsOwnedBy(requester.ID) {
		return nil
	}
	return shared.ErrForbidden.WithMessage("You can only manage your own products")
}

// sellerUsername is best effort; a missing seller leaves the name empty
func (s *ProductService) sellerUsername(ctx context.Context, sellerID *uuid.UUID) *string {
	if sellerID == nil || s.accounts == nil {
		return nil
	}
	seller, err := s.accounts.GetByID(ctx, *sellerID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load seller", zap.String("seller_id", sellerID.String()), zap.Error(err))
		}
		return nil
	}
	return &seller.Username
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish product event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
