package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// DiagnosticReader surfaces diagnostics still awaiting processing as
// DIAGNOSTIC_PENDING tasks. These are read-only projections: they only
// "complete" when the diagnostic itself reaches a terminal status.
type DiagnosticReader struct {
	diagnostics store.DiagnosticStore
	clock       Clock
}

// NewDiagnosticReader creates a DiagnosticReader over the given store.
func NewDiagnosticReader(diagnostics store.DiagnosticStore, clock Clock) *DiagnosticReader {
	return &DiagnosticReader{diagnostics: diagnostics, clock: clock}
}

// Source implements SourceReader.
func (r *DiagnosticReader) Source() string { return "diagnostics" }

// Types implements SourceReader.
func (r *DiagnosticReader) Types() []domain.TaskType {
	return []domain.TaskType{domain.TaskTypeDiagnosticPending}
}

// Fetch implements SourceReader.
func (r *DiagnosticReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.diagnostics.ListPendingInWindow(ctx, window.Start, window.End, filters.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("listing pending diagnostics: %w", err)
	}

	now := r.clock()
	out := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		out = append(out, NormalizeDiagnostic(rec, now))
	}
	return out, nil
}

// NormalizeDiagnostic projects a pending diagnostic into the common Task
// shape. A scheduled diagnostic shows as IN_PROGRESS, an unscheduled one
// as TODO; priority is MEDIUM, escalating to HIGH once overdue.
func NormalizeDiagnostic(d *domain.Diagnostic, now time.Time) domain.Task {
	status := domain.TaskStatusTodo
	if d.Status == domain.DiagnosticStatusScheduled {
		status = domain.TaskStatusInProgress
	}

	dueDate := d.ScheduledDate

	task := domain.Task{
		ID:          TaskID(domain.TaskTypeDiagnosticPending, d.ID),
		Title:       "Diagnostic " + d.Code,
		Description: fmt.Sprintf("Pending diagnostic for %s", d.DeviceName),
		Type:        domain.TaskTypeDiagnosticPending,
		Status:      status,
		Priority:    escalateWhenOverdue(domain.TaskPriorityMedium, domain.TaskPriorityHigh, &dueDate, now, 0),
		StartDate:   d.ScheduledDate,
		DueDate:     &dueDate,
		AssignedTo:  d.Technician,
		Client:      d.Patient,
		RelatedData: domain.RelatedData{
			DeviceName:     d.DeviceName,
			DiagnosticID:   d.ID.String(),
			DiagnosticCode: d.Code,
		},
		ActionURL:   "/diagnostics/" + d.ID.String(),
		ActionLabel: "Open diagnostic",
		CanComplete: domain.TaskTypeDiagnosticPending.DirectlyCompletable(),
	}

	overlayOverdue(&task, now)
	return task
}
