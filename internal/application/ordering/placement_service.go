package ordering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultPlacementTimeout bounds a single placement transaction
const DefaultPlacementTimeout = 5 * time.Second

// Placement outcomes reported to PlacementMetrics
const (
	OutcomePlaced = "placed"
)

// PlacementMetrics receives the outcome and latency of each placement attempt
type PlacementMetrics interface {
	RecordPlacement(ctx context.Context, outcome string, duration time.Duration)
}

// PlacementService is the order placement engine. It checks the buyer and
// quantity, then debits stock and appends the order in one transaction.
type PlacementService struct {
	txScope        TransactionScope
	timeout        time.Duration
	now            func() time.Time
	eventPublisher shared.EventPublisher
	metrics        PlacementMetrics
	logger         *zap.Logger
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(txScope TransactionScope, timeout time.Duration, logger *zap.Logger) *PlacementService {
	if timeout <= 0 {
		timeout = DefaultPlacementTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementService{
		txScope: txScope,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// SetEventPublisher sets the publisher that receives OrderPlaced after commit
func (s *PlacementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the placement metrics sink
func (s *PlacementService) SetMetrics(metrics PlacementMetrics) {
	s.metrics = metrics
}

// SetClock overrides the server clock used for PlacedAt
func (s *PlacementService) SetClock(now func() time.Time) {
	s.now = now
}

// PlaceOrder buys quantity units of productID on behalf of buyer.
//
// Role and quantity are checked before any storage access. The product row is
// then locked, its stock checked and decremented, and the order inserted, all
// in one transaction. On any error nothing is written. The call is attempted
// exactly once; a retry that succeeds creates a second order.
func (s *PlacementService) PlaceOrder(ctx context.Context, buyer identity.Account, productID uuid.UUID, quantity int) (*ordering.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place",
		"buyer_id", buyer.ID,
		"product_id", productID,
		"quantity", quantity,
	)
	defer span.End()

	start := time.Now()
	order, remaining, err := s.place(ctx, buyer, productID, quantity)
	s.recordOutcome(ctx, err, time.Since(start))
	telemetry.RecordError(span, err)

	log := s.logger.With(
		zap.String("buyer_id", buyer.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)
	if err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) && de.Code != shared.ErrStorage.Code && de.Code != shared.ErrTimeout.Code {
			log.Info("Order rejected", zap.String("reason", de.Code))
		} else {
			log.Error("Order placement failed", zap.Error(err))
		}
		return nil, err
	}

	telemetry.SetAttributes(span, "order_id", order.ID, "remaining_stock", remaining)
	log.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Int("remaining_stock", remaining))

	s.publish(ctx, ordering.NewOrderPlacedEvent(order, remaining))
	return order, nil
}

func (s *PlacementService) place(ctx context.Context, buyer identity.Account, productID uuid.UUID, quantity int) (*ordering.Order, int, error) {
	if !buyer.Role.CanPlaceOrders() {
		return nil, 0, shared.ErrForbidden.WithMessage("Only customers can place orders")
	}
	if quantity <= 0 {
		return nil, 0, shared.ErrInvalidInput.WithMessage("Quantity must be a positive integer")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		order     *ordering.Order
		remaining int
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		products := repos.ProductRepo()

		product, err := products.GetProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		current := product.Stock
		if err := product.Debit(quantity); err != nil {
			return err
		}
		if err := products.SetStock(ctx, product.ID, product.Stock, current); err != nil {
			return err
		}

		o, err := ordering.NewOrder(buyer.ID, product.ID, quantity, s.now())
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().InsertOrder(ctx, o); err != nil {
			return err
		}

		order = o
		remaining = product.Stock
		return nil
	})
	if err != nil {
		// Some drivers report a cancelled lock wait without the context error in the chain.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return nil, 0, shared.WrapStorage(err)
	}
	return order, remaining, nil
}

func (s *PlacementService) recordOutcome(ctx context.Context, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordPlacement(ctx, OutcomeOf(err), elapsed)
}

// publish runs after commit; a failing handler cannot undo the order
func (s *PlacementService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

// OutcomeOf maps a placement error to a metric label
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomePlaced
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return shared.ErrStorage.Code
}
