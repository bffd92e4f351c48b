package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// SaleReader surfaces sold equipment follow-ups: periodic maintenance and
// the commercial rappels at two and seven years after the sale.
type SaleReader struct {
	sales store.SaleStore
	clock Clock
}

// NewSaleReader creates a SaleReader over the given store.
func NewSaleReader(sales store.SaleStore, clock Clock) *SaleReader {
	return &SaleReader{sales: sales, clock: clock}
}

// Source implements SourceReader.
func (r *SaleReader) Source() string { return "sales" }

// Types implements SourceReader.
func (r *SaleReader) Types() []domain.TaskType {
	return []domain.TaskType{
		domain.TaskTypeMaintenanceDue,
		domain.TaskTypeSaleRappel2Years,
		domain.TaskTypeSaleRappel7Years,
	}
}

// Fetch implements SourceReader.
func (r *SaleReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.sales.ListRemindableInWindow(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("listing remindable sales: %w", err)
	}

	now := r.clock()
	var out []domain.Task
	for _, rec := range records {
		out = append(out, NormalizeSale(rec, window, now)...)
	}
	return out, nil
}

// NormalizeSale projects one sale into every reminder its dates put
// inside the window and that has not been acknowledged yet.
func NormalizeSale(s *domain.Sale, window Window, now time.Time) []domain.Task {
	var out []domain.Task

	if s.NextMaintenanceDate != nil && !s.MaintenanceDone && window.Contains(*s.NextMaintenanceDate) {
		task := saleTask(s, domain.TaskTypeMaintenanceDue, *s.NextMaintenanceDate)
		task.Title = "Maintenance due " + s.Code
		task.Description = fmt.Sprintf("Scheduled maintenance for %s", s.DeviceName)
		task.Priority = escalateWhenOverdue(domain.TaskPriorityMedium, domain.TaskPriorityHigh, s.NextMaintenanceDate, now, 0)
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	if rappel2 := s.Rappel2Date(); !s.Rappel2Done && window.Contains(rappel2) {
		task := saleTask(s, domain.TaskTypeSaleRappel2Years, rappel2)
		task.Title = "2-year follow-up " + s.Code
		task.Description = fmt.Sprintf("Two years since sale of %s", s.DeviceName)
		task.Priority = domain.TaskPriorityMedium
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	if rappel7 := s.Rappel7Date(); !s.Rappel7Done && window.Contains(rappel7) {
		task := saleTask(s, domain.TaskTypeSaleRappel7Years, rappel7)
		task.Title = "7-year renewal " + s.Code
		task.Description = fmt.Sprintf("Seven years since sale of %s", s.DeviceName)
		task.Priority = domain.TaskPriorityLow
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	return out
}

// saleTask builds the shared envelope for one of a sale's reminder
// variants.
func saleTask(s *domain.Sale, taskType domain.TaskType, due time.Time) domain.Task {
	dueDate := due
	return domain.Task{
		ID:        TaskID(taskType, s.ID),
		Type:      taskType,
		Status:    domain.TaskStatusTodo,
		StartDate: s.SaleDate,
		DueDate:   &dueDate,
		Client:    s.Client,
		RelatedData: domain.RelatedData{
			DeviceName: s.DeviceName,
			SaleCode:   s.Code,
		},
		ActionURL:   "/sales/" + s.ID.String(),
		ActionLabel: "Open sale",
		CanComplete: taskType.DirectlyCompletable(),
	}
}
