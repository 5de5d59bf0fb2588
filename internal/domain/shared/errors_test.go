package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("custom message matches sentinel", func(t *testing.T) {
		err := ErrNotFound.WithMessage("product %s not found", "p-1")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrForbidden))
		assert.Equal(t, "product p-1 not found", err.Error())
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("place order: %w", ErrInsufficientStock)
		assert.True(t, errors.Is(err, ErrInsufficientStock))
	})

	t.Run("non domain target", func(t *testing.T) {
		assert.False(t, ErrNotFound.Is(errors.New("NOT_FOUND")))
	})
}

func TestWrapStorage(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, WrapStorage(nil))
	})

	t.Run("driver error becomes storage error", func(t *testing.T) {
		cause := errors.New("connection reset by peer")
		err := WrapStorage(cause)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStorage))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, ErrTimeout))

		var de *DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "STORAGE_ERROR", de.Code)
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := WrapStorage(fmt.Errorf("commit: %w", context.DeadlineExceeded))
		assert.True(t, errors.Is(err, ErrTimeout))
		assert.False(t, errors.Is(err, ErrStorage))
	})

	t.Run("cancellation becomes timeout", func(t *testing.T) {
		assert.True(t, errors.Is(WrapStorage(context.Canceled), ErrTimeout))
	})

	t.Run("domain error passes through", func(t *testing.T) {
		err := WrapStorage(ErrInsufficientStock)
		assert.Same(t, ErrInsufficientStock, err)
	})
}
