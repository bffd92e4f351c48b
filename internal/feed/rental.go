package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// RentalReader surfaces rental contracts as up to four task types per
// record: the contract expiry, an operator alert, a titration reminder
// and a follow-up appointment reminder. Each carries its own date, so one
// rental can contribute several tasks to the same window.
type RentalReader struct {
	rentals    store.RentalStore
	expiryWarn time.Duration
	clock      Clock
}

// NewRentalReader creates a RentalReader over the given store. expiryWarn
// is how close to its end date a rental must be before the expiry task
// escalates to HIGH.
func NewRentalReader(rentals store.RentalStore, expiryWarn time.Duration, clock Clock) *RentalReader {
	return &RentalReader{rentals: rentals, expiryWarn: expiryWarn, clock: clock}
}

// Source implements SourceReader.
func (r *RentalReader) Source() string { return "rentals" }

// Types implements SourceReader.
func (r *RentalReader) Types() []domain.TaskType {
	return []domain.TaskType{
		domain.TaskTypeRentalExpiring,
		domain.TaskTypeRentalAlert,
		domain.TaskTypeRentalTitration,
		domain.TaskTypeRentalAppointment,
	}
}

// Fetch implements SourceReader.
func (r *RentalReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.rentals.ListRelevantInWindow(ctx, window.Start, window.End, filters.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("listing rentals: %w", err)
	}

	now := r.clock()
	var out []domain.Task
	for _, rec := range records {
		out = append(out, NormalizeRental(rec, window, now, r.expiryWarn)...)
	}
	return out, nil
}

// NormalizeRental projects one rental into every task its dates put
// inside the window. Terminal rentals (returned, cancelled) contribute
// nothing.
func NormalizeRental(rental *domain.Rental, window Window, now time.Time, expiryWarn time.Duration) []domain.Task {
	if rental.Status.Terminal() {
		return nil
	}

	var out []domain.Task

	if rental.EndDate != nil && window.Contains(*rental.EndDate) {
		task := rentalTask(rental, domain.TaskTypeRentalExpiring, *rental.EndDate)
		task.Title = "Rental expiring " + rental.Code
		task.Description = fmt.Sprintf("Rental of %s ends %s", rental.DeviceName, rental.EndDate.Format("2006-01-02"))
		task.Priority = rentalExpiryPriority(*rental.EndDate, now, expiryWarn)
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	if rental.AlertDate != nil && window.Contains(*rental.AlertDate) {
		task := rentalTask(rental, domain.TaskTypeRentalAlert, *rental.AlertDate)
		task.Title = "Rental alert " + rental.Code
		task.Description = rental.AlertMessage
		task.Priority = domain.TaskPriorityHigh
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	if rental.TitrationDate != nil && window.Contains(*rental.TitrationDate) {
		task := rentalTask(rental, domain.TaskTypeRentalTitration, *rental.TitrationDate)
		task.Title = "Titration " + rental.Code
		task.Description = fmt.Sprintf("Titration due for %s", rental.DeviceName)
		task.Priority = domain.TaskPriorityMedium
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	if rental.AppointmentDate != nil && window.Contains(*rental.AppointmentDate) {
		task := rentalTask(rental, domain.TaskTypeRentalAppointment, *rental.AppointmentDate)
		task.Title = "Rental appointment " + rental.Code
		task.Description = fmt.Sprintf("Follow-up appointment for %s", rental.DeviceName)
		task.Priority = domain.TaskPriorityMedium
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	return out
}

// rentalTask builds the shared envelope for one of a rental's task
// variants, keyed by the variant's own date.
func rentalTask(rental *domain.Rental, taskType domain.TaskType, due time.Time) domain.Task {
	dueDate := due
	return domain.Task{
		ID:         TaskID(taskType, rental.ID),
		Type:       taskType,
		Status:     domain.TaskStatusTodo,
		StartDate:  rental.StartDate,
		DueDate:    &dueDate,
		AssignedTo: rental.AssignedTo,
		Client:     rental.Patient,
		RelatedData: domain.RelatedData{
			DeviceName: rental.DeviceName,
			RentalID:   rental.ID.String(),
			RentalCode: rental.Code,
		},
		ActionURL:   "/rentals/" + rental.ID.String(),
		ActionLabel: "Open rental",
		CanComplete: taskType.DirectlyCompletable(),
	}
}
