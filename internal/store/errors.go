package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrWriteConflict is returned when an optimistic-concurrency write
	// lost the race: the record's version token changed between read and
	// write. Callers should re-read and retry rather than treat this as
	// a hard failure.
	ErrWriteConflict = errors.New("write conflict")

	// Entity-specific "not found" errors

	// ErrManualTaskNotFound indicates the requested manual task does not exist.
	ErrManualTaskNotFound = fmt.Errorf("%w: manual task", ErrNotFound)

	// ErrDiagnosticNotFound indicates the requested diagnostic does not exist.
	ErrDiagnosticNotFound = fmt.Errorf("%w: diagnostic", ErrNotFound)

	// ErrRentalNotFound indicates the requested rental does not exist.
	ErrRentalNotFound = fmt.Errorf("%w: rental", ErrNotFound)

	// ErrPaymentNotFound indicates the requested payment does not exist.
	ErrPaymentNotFound = fmt.Errorf("%w: payment", ErrNotFound)

	// ErrAppointmentNotFound indicates the requested appointment does not exist.
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", ErrNotFound)

	// ErrBonNotFound indicates the requested CNAM bon does not exist.
	ErrBonNotFound = fmt.Errorf("%w: cnam bon", ErrNotFound)

	// ErrSaleNotFound indicates the requested sale does not exist.
	ErrSaleNotFound = fmt.Errorf("%w: sale", ErrNotFound)

	// ErrUserNotFound indicates the requested staff user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "manual_task", "payment")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
