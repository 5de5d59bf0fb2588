package shared

import (
	"context"
	"time"
)

// IdempotencyStore records client-supplied request keys so that a retried
// request is not executed twice.
type IdempotencyStore interface {
	// Claim records key with a TTL.
	// Returns true if the key was newly claimed, false if it was already present.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsClaimed checks if a key is currently held
	IsClaimed(ctx context.Context, key string) (bool, error)

	// Release removes a key so the request may be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a claimed key blocks a repeat. Default: 24 hours
	TTL time.Duration
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL: 24 * time.Hour,
	}
}
