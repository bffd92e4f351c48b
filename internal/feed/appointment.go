package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// AppointmentReader surfaces scheduled appointments as reminder tasks.
// Alongside manual tasks this is the only type the lifecycle controller
// completes directly, and the only other type with editable notes.
type AppointmentReader struct {
	appointments store.AppointmentStore
	clock        Clock
}

// NewAppointmentReader creates an AppointmentReader over the given store.
func NewAppointmentReader(appointments store.AppointmentStore, clock Clock) *AppointmentReader {
	return &AppointmentReader{appointments: appointments, clock: clock}
}

// Source implements SourceReader.
func (r *AppointmentReader) Source() string { return "appointments" }

// Types implements SourceReader.
func (r *AppointmentReader) Types() []domain.TaskType {
	return []domain.TaskType{domain.TaskTypeAppointmentReminder}
}

// Fetch implements SourceReader.
func (r *AppointmentReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.appointments.ListInWindow(ctx, window.Start, window.End, filters.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	now := r.clock()
	out := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		if rec.Status == domain.AppointmentStatusCancelled {
			continue
		}
		out = append(out, NormalizeAppointment(rec, now))
	}
	return out, nil
}

// NormalizeAppointment projects an appointment into the common Task
// shape. Completed appointments keep their completion stamps; scheduled
// ones are TODO with the overdue overlay applied.
func NormalizeAppointment(a *domain.Appointment, now time.Time) domain.Task {
	status := domain.TaskStatusTodo
	if a.Status == domain.AppointmentStatusCompleted {
		status = domain.TaskStatusCompleted
	}

	var completedBy string
	if a.CompletedBy != nil {
		completedBy = a.CompletedBy.String()
	}

	dueDate := a.ScheduledDate
	description := a.Kind
	if a.Location != "" {
		description = fmt.Sprintf("%s at %s", a.Kind, a.Location)
	}

	task := domain.Task{
		ID:          TaskID(domain.TaskTypeAppointmentReminder, a.ID),
		Title:       "Appointment " + a.Code,
		Description: description,
		Notes:       a.Notes,
		Type:        domain.TaskTypeAppointmentReminder,
		Status:      status,
		Priority:    domain.TaskPriorityMedium,
		StartDate:   a.ScheduledDate,
		DueDate:     &dueDate,
		CompletedAt: a.CompletedAt,
		CompletedBy: completedBy,
		AssignedTo:  a.AssignedTo,
		Client:      a.Patient,
		RelatedData: domain.RelatedData{
			AppointmentID:   a.ID.String(),
			AppointmentCode: a.Code,
		},
		ActionURL:   "/appointments/" + a.ID.String(),
		ActionLabel: "Open appointment",
		CanComplete: domain.TaskTypeAppointmentReminder.DirectlyCompletable(),
	}

	overlayOverdue(&task, now)
	return task
}
