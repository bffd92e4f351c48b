package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
)

// ManualTaskStore defines the persistence contract for manually created
// tasks, the only task type stored as its own row.
type ManualTaskStore interface {
	// Create saves a new manual task.
	// Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.ManualTask) error

	// GetByID retrieves a manual task by its unique ID.
	// Returns ErrManualTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ManualTask, error)

	// ListInWindow returns manual tasks whose due date (or start date when
	// no due date is set) falls inside [start, end], optionally restricted
	// to one assignee. Completed tasks are included; hiding them is a
	// presentation concern.
	ListInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.ManualTask, error)

	// Complete marks the task completed, stamping completedAt/completedBy.
	// The write is a compare-and-set on expectedUpdatedAt; a lost race
	// returns ErrWriteConflict. Completing an already-completed task is a
	// no-op returning nil.
	Complete(ctx context.Context, id, completedBy uuid.UUID, expectedUpdatedAt time.Time) error

	// UpdateNotes replaces the task's free-text notes under the same
	// compare-and-set discipline as Complete.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string, expectedUpdatedAt time.Time) error
}
