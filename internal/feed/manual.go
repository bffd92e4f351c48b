package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// ManualReader surfaces operator-created tasks, the one type whose status
// and priority are stored rather than derived.
type ManualReader struct {
	tasks store.ManualTaskStore
	clock Clock
}

// NewManualReader creates a ManualReader over the given store.
func NewManualReader(tasks store.ManualTaskStore, clock Clock) *ManualReader {
	return &ManualReader{tasks: tasks, clock: clock}
}

// Source implements SourceReader.
func (r *ManualReader) Source() string { return "tasks" }

// Types implements SourceReader.
func (r *ManualReader) Types() []domain.TaskType {
	return []domain.TaskType{domain.TaskTypeManual}
}

// Fetch implements SourceReader.
func (r *ManualReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.tasks.ListInWindow(ctx, window.Start, window.End, filters.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("listing manual tasks: %w", err)
	}

	now := r.clock()
	out := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		out = append(out, NormalizeManualTask(rec, now))
	}
	return out, nil
}

// NormalizeManualTask projects a stored manual task into the common Task
// shape. Stored status passes through and is then upgraded to OVERDUE
// when the due date has passed and the task is not completed.
func NormalizeManualTask(t *domain.ManualTask, now time.Time) domain.Task {
	var completedBy string
	if t.CompletedBy != nil {
		completedBy = t.CompletedBy.String()
	}

	task := domain.Task{
		ID:          TaskID(domain.TaskTypeManual, t.ID),
		Title:       t.Title,
		Description: t.Description,
		Notes:       t.Notes,
		Type:        domain.TaskTypeManual,
		Status:      t.Status,
		Priority:    t.Priority,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CompletedBy: completedBy,
		AssignedTo:  t.AssignedTo,
		Client:      t.Client,
		ActionURL:   "/tasks/" + t.ID.String(),
		ActionLabel: "Open task",
		CanComplete: domain.TaskTypeManual.DirectlyCompletable(),
	}

	overlayOverdue(&task, now)
	return task
}
