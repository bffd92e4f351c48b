package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Manual-task validation errors. Each wraps ErrValidation so callers can
// match the whole family with a single errors.Is check.
var (
	// ErrManualTaskIDEmpty is returned when a manual task ID is empty or nil.
	ErrManualTaskIDEmpty = fmt.Errorf("%w: manual task ID cannot be empty", ErrValidation)

	// ErrManualTaskTitleEmpty is returned when a manual task has no title.
	ErrManualTaskTitleEmpty = fmt.Errorf("%w: manual task title cannot be empty", ErrValidation)

	// ErrManualTaskStatusInvalid is returned when a manual task status is not valid.
	ErrManualTaskStatusInvalid = fmt.Errorf("%w: invalid manual task status", ErrValidation)

	// ErrManualTaskPriorityInvalid is returned when a manual task priority is not valid.
	ErrManualTaskPriorityInvalid = fmt.Errorf("%w: invalid manual task priority", ErrValidation)

	// ErrManualTaskCompleted is returned when mutating a task already in the
	// terminal COMPLETED state.
	ErrManualTaskCompleted = errors.New("manual task is already completed")
)

// ManualTask is the one task type persisted as its own row. It is created
// by an operator (or a scheduler), mutated only through the lifecycle
// controller, and never physically deleted.
type ManualTask struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	StartDate    time.Time    `json:"start_date"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CompletedBy  *uuid.UUID   `json:"completed_by,omitempty"`
	AssignedToID *uuid.UUID   `json:"assigned_to_id,omitempty"`
	PatientID    *uuid.UUID   `json:"patient_id,omitempty"`
	CompanyID    *uuid.UUID   `json:"company_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// AssignedTo and Client are resolved by the store's own relations
	// when listing; they are projections, never written back.
	AssignedTo *AssigneeRef `json:"assigned_to,omitempty"`
	Client     *ClientRef   `json:"client,omitempty"`
}

// NewManualTask creates a manual task in TODO state with the given title,
// priority and dates. Returns an error if validation fails.
func NewManualTask(title, description string, priority TaskPriority, startDate time.Time, dueDate *time.Time) (*ManualTask, error) {
	now := time.Now().UTC()
	if startDate.IsZero() {
		startDate = now
	}

	task := &ManualTask{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    priority,
		StartDate:   startDate,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the ManualTask has valid data.
func (t *ManualTask) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrManualTaskIDEmpty)
	}

	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrManualTaskTitleEmpty)
	}

	// OVERDUE is a derived overlay, never a stored status.
	if t.Status != TaskStatusTodo && t.Status != TaskStatusInProgress && t.Status != TaskStatusCompleted {
		return NewValidationError("status", fmt.Sprintf("%q is not a storable status", t.Status), ErrManualTaskStatusInvalid)
	}

	if !IsValidTaskPriority(t.Priority) {
		return NewValidationError("priority", fmt.Sprintf("%q is not a known priority", t.Priority), ErrManualTaskPriorityInvalid)
	}

	return nil
}

// Complete transitions the task to the terminal COMPLETED state, stamping
// completedAt/completedBy. Completing an already-completed task is a no-op
// so that racing operators both observe success.
func (t *ManualTask) Complete(by uuid.UUID, at time.Time) {
	if t.Status == TaskStatusCompleted {
		return
	}
	t.Status = TaskStatusCompleted
	completedAt := at.UTC()
	t.CompletedAt = &completedAt
	t.CompletedBy = &by
	t.UpdatedAt = completedAt
}
