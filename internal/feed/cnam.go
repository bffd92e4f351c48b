package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// CNAMReader surfaces CNAM reimbursement bons whose renewal window falls
// inside the query window. A bon's renewal window opens renewalLead
// before its end date; the task is due by the end date itself.
type CNAMReader struct {
	bons        store.CNAMBonStore
	renewalLead time.Duration
	clock       Clock
}

// NewCNAMReader creates a CNAMReader over the given store.
func NewCNAMReader(bons store.CNAMBonStore, renewalLead time.Duration, clock Clock) *CNAMReader {
	return &CNAMReader{bons: bons, renewalLead: renewalLead, clock: clock}
}

// Source implements SourceReader.
func (r *CNAMReader) Source() string { return "cnam" }

// Types implements SourceReader.
func (r *CNAMReader) Types() []domain.TaskType {
	return []domain.TaskType{domain.TaskTypeCNAMRenewal}
}

// Fetch implements SourceReader.
func (r *CNAMReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.bons.ListRenewableInWindow(ctx, window.Start, window.End, r.renewalLead)
	if err != nil {
		return nil, fmt.Errorf("listing renewable bons: %w", err)
	}

	now := r.clock()
	out := make([]domain.Task, 0, len(records))
	for _, rec := range records {
		out = append(out, NormalizeBon(rec, now, r.renewalLead))
	}
	return out, nil
}

// NormalizeBon projects a CNAM bon into a renewal task. The start date is
// when the renewal window opens, the due date the bon's end date, and the
// priority HIGH, escalating to URGENT once the bon has expired unrenewed.
func NormalizeBon(bon *domain.CNAMBon, now time.Time, renewalLead time.Duration) domain.Task {
	dueDate := bon.EndDate

	task := domain.Task{
		ID:          TaskID(domain.TaskTypeCNAMRenewal, bon.ID),
		Title:       "CNAM renewal " + bon.BonNumber,
		Description: fmt.Sprintf("Bon for %s expires %s", bon.DeviceName, bon.EndDate.Format("2006-01-02")),
		Type:        domain.TaskTypeCNAMRenewal,
		Status:      domain.TaskStatusTodo,
		Priority:    escalateWhenOverdue(domain.TaskPriorityHigh, domain.TaskPriorityUrgent, &dueDate, now, 0),
		StartDate:   bon.EndDate.Add(-renewalLead),
		DueDate:     &dueDate,
		Client:      bon.Patient,
		RelatedData: domain.RelatedData{
			DeviceName: bon.DeviceName,
			BonNumber:  bon.BonNumber,
		},
		ActionURL:   "/cnam/bons/" + bon.ID.String(),
		ActionLabel: "Renew bon",
		CanComplete: domain.TaskTypeCNAMRenewal.DirectlyCompletable(),
	}

	overlayOverdue(&task, now)
	return task
}
