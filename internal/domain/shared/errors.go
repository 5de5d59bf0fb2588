package shared

import (
	"context"
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that a DomainError
// created with a custom message still matches its sentinel under errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden         = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrStorage           = NewDomainError("STORAGE_ERROR", "Storage operation failed")
	ErrTimeout           = NewDomainError("TIMEOUT", "Operation timed out")
	ErrDuplicateRequest  = NewDomainError("DUPLICATE_REQUEST", "Request has already been processed")

	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)

// StorageError wraps an infrastructure failure. It matches ErrStorage (or
// ErrTimeout for deadline and cancellation causes) under errors.Is while
// keeping the driver error reachable through errors.Unwrap.
type StorageError struct {
	kind  *DomainError
	cause error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind.Message, e.cause)
}

// Unwrap returns the underlying cause
func (e *StorageError) Unwrap() error {
	return e.cause
}

// Is matches the sentinel this error was classified as
func (e *StorageError) Is(target error) bool {
	return e.kind.Is(target)
}

// As lets errors.As extract the classified *DomainError
func (e *StorageError) As(target any) bool {
	if de, ok := target.(**DomainError); ok {
		*de = e.kind
		return true
	}
	return false
}

// WrapStorage classifies err as a storage failure. Domain errors pass through
// unchanged, nil stays nil.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	kind := ErrStorage
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = ErrTimeout
	}
	return &StorageError{kind: kind, cause: err}
}
