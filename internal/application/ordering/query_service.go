package ordering

import (
	"context"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// QueryService lists orders visible to the requesting account
type QueryService struct {
	orderQueries ordering.OrderQueryRepository
	logger       *zap.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(orderQueries ordering.OrderQueryRepository, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		orderQueries: orderQueries,
		logger:       logger,
	}
}

// ListOrders returns orders newest first, scoped by role: admins see every
// order, sellers see orders for products they list, customers see their own.
func (s *QueryService) ListOrders(ctx context.Context, requester identity.Account) ([]ordering.OrderView, error) {
	var (
		views []ordering.OrderView
		err   error
	)
	switch requester.Role {
	case identity.RoleAdmin:
		views, err = s.orderQueries.ListAll(ctx)
	case identity.RoleSeller:
		views, err = s.orderQueries.ListBySeller(ctx, requester.ID)
	case identity.RoleCustomer:
		views, err = s.orderQueries.ListByBuyer(ctx, requester.ID)
	default:
		return nil, shared.ErrForbidden.WithMessage("Unknown role: %s", requester.Role)
	}
	if err != nil {
		s.logger.Error("Failed to list orders",
			zap.String("account_id", requester.ID.String()),
			zap.String("role", requester.Role.String()),
			zap.Error(err))
		return nil, shared.WrapStorage(err)
	}
	if views == nil {
		views = []ordering.OrderView{}
	}
	return views, nil
}
