package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the keyed state that may live in Redis or in memory.
type Stores struct {
	Idempotency shared.IdempotencyStore
	Blacklist   auth.TokenBlacklist
	// Redis is nil when the in-memory backends are in use.
	Redis *redis.Client
}

// Close releases the stores and the Redis client, if any.
func (s *Stores) Close() error {
	err := s.Idempotency.Close()
	if s.Redis != nil {
		if cerr := s.Redis.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// StoresOption configures NewStores
type StoresOption func(*storesOptions)

type storesOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report the chosen backend
func WithLogger(logger *zap.Logger) StoresOption {
	return func(o *storesOptions) { o.logger = logger }
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-memory stores instead of failing. Default true.
func WithInMemoryFallback(allow bool) StoresOption {
	return func(o *storesOptions) { o.allowFallback = allow }
}

// NewStores picks Redis when cfg.Enabled and reachable, in-memory otherwise.
func NewStores(ctx context.Context, cfg config.RedisConfig, opts ...StoresOption) (*Stores, error) {
	o := storesOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Enabled {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			o.logger.Info("Using Redis for idempotency keys and token revocation", zap.String("addr", cfg.Addr()))
			return &Stores{
				Idempotency: NewRedisIdempotencyStore(client, ""),
				Blacklist:   auth.NewRedisTokenBlacklist(client),
				Redis:       client,
			}, nil
		}
		if !o.allowFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}

	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(0),
		Blacklist:   auth.NewInMemoryTokenBlacklist(),
	}, nil
}
