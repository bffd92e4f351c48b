package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// PaymentReader surfaces unsettled payments as PAYMENT_DUE tasks and
// approaching payment-period endings as PAYMENT_PERIOD_END tasks. Both
// are projections: they only "complete" once the remaining balance is
// independently zero.
type PaymentReader struct {
	payments store.PaymentStore
	grace    time.Duration
	clock    Clock
}

// NewPaymentReader creates a PaymentReader over the given store. grace is
// how long past due a payment may be before its task escalates to URGENT.
func NewPaymentReader(payments store.PaymentStore, grace time.Duration, clock Clock) *PaymentReader {
	return &PaymentReader{payments: payments, grace: grace, clock: clock}
}

// Source implements SourceReader.
func (r *PaymentReader) Source() string { return "payments" }

// Types implements SourceReader.
func (r *PaymentReader) Types() []domain.TaskType {
	return []domain.TaskType{domain.TaskTypePaymentDue, domain.TaskTypePaymentPeriodEnd}
}

// Fetch implements SourceReader.
func (r *PaymentReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	records, err := r.payments.ListDueInWindow(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("listing payments due: %w", err)
	}

	now := r.clock()
	var out []domain.Task
	for _, rec := range records {
		out = append(out, NormalizePayment(rec, window, now, r.grace)...)
	}
	return out, nil
}

// NormalizePayment projects one payment into the tasks its dates put
// inside the window. Settled payments contribute nothing.
func NormalizePayment(p *domain.Payment, window Window, now time.Time, grace time.Duration) []domain.Task {
	if p.Settled() {
		return nil
	}

	var out []domain.Task

	if p.DueDate != nil && window.Contains(*p.DueDate) {
		task := paymentTask(p, domain.TaskTypePaymentDue, *p.DueDate)
		task.Title = "Payment due " + p.Code
		task.Description = fmt.Sprintf("%.2f remaining of %.2f", p.RemainingAmount, p.Amount)
		task.Priority = escalateWhenOverdue(domain.TaskPriorityHigh, domain.TaskPriorityUrgent, p.DueDate, now, grace)
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	if p.PeriodEndDate != nil && window.Contains(*p.PeriodEndDate) {
		task := paymentTask(p, domain.TaskTypePaymentPeriodEnd, *p.PeriodEndDate)
		task.Title = "Payment period ending " + p.Code
		task.Description = fmt.Sprintf("Payment period ends %s", p.PeriodEndDate.Format("2006-01-02"))
		task.Priority = escalateWhenOverdue(domain.TaskPriorityHigh, domain.TaskPriorityUrgent, p.PeriodEndDate, now, 0)
		overlayOverdue(&task, now)
		out = append(out, task)
	}

	return out
}

// paymentTask builds the shared envelope for one of a payment's task
// variants.
func paymentTask(p *domain.Payment, taskType domain.TaskType, due time.Time) domain.Task {
	dueDate := due
	amount := p.Amount
	return domain.Task{
		ID:        TaskID(taskType, p.ID),
		Type:      taskType,
		Status:    domain.TaskStatusTodo,
		StartDate: due,
		DueDate:   &dueDate,
		Client:    p.Client,
		RelatedData: domain.RelatedData{
			Amount:      &amount,
			PaymentID:   p.ID.String(),
			PaymentCode: p.Code,
		},
		ActionURL:   "/payments/" + p.ID.String(),
		ActionLabel: "Record payment",
		CanComplete: taskType.DirectlyCompletable(),
	}
}
