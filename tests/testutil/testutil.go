// Package testutil holds helpers shared by the shopfront integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// ContextWithTimeout returns a context cancelled at test cleanup or after timeout.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

func poll(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// AssertEventually marks the test failed if condition stays false for timeout.
func AssertEventually(t testing.TB, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) bool {
	t.Helper()
	if poll(condition, timeout, interval) {
		return true
	}
	t.Errorf("condition not met within %v: %v", timeout, msgAndArgs)
	return false
}

// RequireEventually is AssertEventually that stops the test.
func RequireEventually(t testing.TB, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !poll(condition, timeout, interval) {
		require.Fail(t, "condition not met within "+timeout.String(), msgAndArgs...)
	}
}

// AssertNever fails if condition becomes true at any point during duration.
func AssertNever(t testing.TB, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) bool {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if condition() {
			t.Errorf("condition unexpectedly became true: %v", msgAndArgs)
			return false
		}
		time.Sleep(interval)
	}
	return true
}
