package api

import (
	"errors"
	"net/http"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/feed"
	"github.com/medirent/opsdesk/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, feed.ErrInvalidFilter),
		errors.Is(err, feed.ErrInvalidWindow),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTaskType),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Completion precondition not met: distinct from a hard failure,
	// the client receives the action target alongside the conflict.
	case errors.Is(err, feed.ErrNotCompletable):
		return http.StatusConflict

	// A lost optimistic-concurrency race is retryable, not a 500.
	case errors.Is(err, store.ErrWriteConflict):
		return http.StatusConflict

	// Notes not applicable for this task type
	case errors.Is(err, feed.ErrNotEditable):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, feed.ErrInvalidFilter):
		return "Unknown task filter"

	case errors.Is(err, feed.ErrInvalidWindow):
		return "Invalid query window"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid task ID"

	case errors.Is(err, domain.ErrInvalidTaskType):
		return "Invalid task type"

	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case store.IsNotFoundError(err):
		return "Record not found"

	case errors.Is(err, store.ErrWriteConflict):
		return "The record was modified by another operator, retry"

	case errors.Is(err, feed.ErrNotEditable):
		return "Notes cannot be edited for this task type"

	default:
		return "An unexpected error occurred"
	}
}
