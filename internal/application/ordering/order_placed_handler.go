package ordering

import (
	"context"
	"fmt"

	"github.com/shopfront/backend/internal/domain/ordering"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderVolumeRecorder counts committed orders and the units they moved
type OrderVolumeRecorder interface {
	RecordOrderPlaced(ctx context.Context, quantity int)
}

// OrderPlacedHandler reacts to committed orders: it feeds order volume
// metrics and warns when a product sells out.
type OrderPlacedHandler struct {
	logger   *zap.Logger
	recorder OrderVolumeRecorder
}

// NewOrderPlacedHandler creates a new handler for order placed events
func NewOrderPlacedHandler(logger *zap.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{
		logger: logger,
	}
}

// WithRecorder sets the volume recorder
func (h *OrderPlacedHandler) WithRecorder(recorder OrderVolumeRecorder) *OrderPlacedHandler {
	h.recorder = recorder
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderPlaced}
}

// Handle processes an OrderPlacedEvent
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*ordering.OrderPlacedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ordering.EventTypeOrderPlaced),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ordering.EventTypeOrderPlaced, event.EventType())
	}

	if h.recorder != nil {
		h.recorder.RecordOrderPlaced(ctx, placed.Quantity)
	}

	if placed.RemainingStock == 0 {
		h.logger.Warn("product sold out",
			zap.String("product_id", placed.ProductID.String()),
			zap.String("order_id", placed.OrderID.String()),
		)
	}

	return nil
}

// Ensure OrderPlacedHandler implements shared.EventHandler
var _ shared.EventHandler = (*OrderPlacedHandler)(nil)
