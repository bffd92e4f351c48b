package feed

import (
	"errors"
	"fmt"

	"github.com/medirent/opsdesk/internal/domain"
)

// Feed-level errors.
var (
	// ErrInvalidFilter is returned when a type filter is neither "all",
	// a known group alias, nor a known task type. The request is rejected
	// as a whole; there is no silent fallback to "all".
	ErrInvalidFilter = errors.New("invalid task filter")

	// ErrInvalidWindow is returned when a query window is malformed
	// (zero bounds or end before start).
	ErrInvalidWindow = errors.New("invalid query window")

	// ErrNotEditable is returned when a notes update is attempted on a
	// task type whose notes are a projection of the owning domain record.
	// Callers must be able to distinguish "saved" from "not applicable".
	ErrNotEditable = errors.New("notes are not editable for this task type")

	// ErrNotCompletable is wrapped by RequiresActionError; it is also
	// usable directly in errors.Is checks.
	ErrNotCompletable = errors.New("task cannot be completed directly")
)

// RequiresActionError is returned when completion is attempted on a
// derived task whose real-world precondition is unsatisfied. It carries
// the action target so the operator can go perform the real action
// (pay, finish the diagnostic, renew the bon) instead of receiving a
// fabricated success.
type RequiresActionError struct {
	TaskType  domain.TaskType
	ActionURL string
	Reason    string
}

// Error implements the error interface for RequiresActionError.
func (e *RequiresActionError) Error() string {
	return fmt.Sprintf("%s task requires action: %s", e.TaskType, e.Reason)
}

// Unwrap supports errors.Is(err, ErrNotCompletable).
func (e *RequiresActionError) Unwrap() error {
	return ErrNotCompletable
}
