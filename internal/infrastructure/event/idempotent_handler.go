package event

import (
	"context"

	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const eventKeyPrefix = "event:"

// IdempotentHandler runs the wrapped handler at most once per event ID,
// claiming the ID in an IdempotencyStore first.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
}

// NewIdempotentHandler wraps handler. config.TTL bounds how long an ID is remembered.
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TTL <= 0 {
		config = shared.DefaultIdempotencyConfig()
	}
	return &IdempotentHandler{handler: handler, store: store, config: config, logger: logger}
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle claims the event ID, then delegates. A store failure lets the event
// through: double counting beats dropping. A handler failure releases the
// claim so a redelivery can retry.
func (h *IdempotentHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	key := eventKeyPrefix + ev.EventID().String()

	fresh, err := h.store.Claim(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("Idempotency check failed, handling anyway",
			zap.String("event_id", ev.EventID().String()), zap.Error(err))
	case !fresh:
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", ev.EventID().String()),
			zap.String("event_type", ev.EventType()))
		return nil
	}

	if err := h.handler.Handle(ctx, ev); err != nil {
		if rerr := h.store.Release(ctx, key); rerr != nil {
			h.logger.Warn("Failed to release event claim", zap.Error(rerr))
		}
		return err
	}
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
