package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/platform/logger"
	"github.com/medirent/opsdesk/internal/store"
)

// Lifecycle applies the completion state machine and notes-edit rules per
// task type. Manual tasks and appointment reminders complete directly
// (idempotently once completed); every other type is a projection whose
// completion is verified against the owning domain and otherwise rejected
// with a requires-action signal pointing at the real business action.
type Lifecycle struct {
	manualTasks  store.ManualTaskStore
	diagnostics  store.DiagnosticStore
	rentals      store.RentalStore
	payments     store.PaymentStore
	appointments store.AppointmentStore
	bons         store.CNAMBonStore
	sales        store.SaleStore
	logger       *slog.Logger
}

// NewLifecycle creates a Lifecycle controller over the domain stores.
func NewLifecycle(
	manualTasks store.ManualTaskStore,
	diagnostics store.DiagnosticStore,
	rentals store.RentalStore,
	payments store.PaymentStore,
	appointments store.AppointmentStore,
	bons store.CNAMBonStore,
	sales store.SaleStore,
	log *slog.Logger,
) *Lifecycle {
	if log == nil {
		log = slog.Default()
	}
	return &Lifecycle{
		manualTasks:  manualTasks,
		diagnostics:  diagnostics,
		rentals:      rentals,
		payments:     payments,
		appointments: appointments,
		bons:         bons,
		sales:        sales,
		logger:       log.With(slog.String("component", "lifecycle")),
	}
}

// Complete applies the per-type completion rule to the task identified by
// taskID. The declared taskType must match the type encoded in the ID so
// a stale client cannot complete the wrong record. completedBy is the
// operator performing the action.
func (l *Lifecycle) Complete(ctx context.Context, taskID string, taskType domain.TaskType, completedBy uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, l.logger)

	sourceID, err := l.resolve(taskID, taskType)
	if err != nil {
		return err
	}

	log.Debug("completing task",
		slog.String("task_id", taskID),
		slog.String("task_type", string(taskType)))

	switch taskType {
	case domain.TaskTypeManual:
		return l.completeManualTask(ctx, sourceID, completedBy)

	case domain.TaskTypeAppointmentReminder:
		return l.completeAppointment(ctx, sourceID, completedBy)

	case domain.TaskTypePaymentDue, domain.TaskTypePaymentPeriodEnd:
		payment, err := l.payments.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if payment.Settled() {
			return nil
		}
		return &RequiresActionError{
			TaskType:  taskType,
			ActionURL: "/payments/" + sourceID.String(),
			Reason:    fmt.Sprintf("%.2f remains unpaid", payment.RemainingAmount),
		}

	case domain.TaskTypeDiagnosticPending:
		diagnostic, err := l.diagnostics.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if diagnostic.Status.Terminal() {
			return nil
		}
		return &RequiresActionError{
			TaskType:  taskType,
			ActionURL: "/diagnostics/" + sourceID.String(),
			Reason:    "diagnostic has not reached a terminal status",
		}

	case domain.TaskTypeRentalExpiring, domain.TaskTypeRentalAlert,
		domain.TaskTypeRentalTitration, domain.TaskTypeRentalAppointment:
		rental, err := l.rentals.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if rental.Status.Terminal() {
			return nil
		}
		return &RequiresActionError{
			TaskType:  taskType,
			ActionURL: "/rentals/" + sourceID.String(),
			Reason:    "rental is still open",
		}

	case domain.TaskTypeCNAMRenewal:
		bon, err := l.bons.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if bon.Renewed {
			return nil
		}
		return &RequiresActionError{
			TaskType:  taskType,
			ActionURL: "/cnam/bons/" + sourceID.String(),
			Reason:    "bon has not been renewed",
		}

	case domain.TaskTypeMaintenanceDue, domain.TaskTypeSaleRappel2Years, domain.TaskTypeSaleRappel7Years:
		sale, err := l.sales.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if saleReminderDone(sale, taskType) {
			return nil
		}
		return &RequiresActionError{
			TaskType:  taskType,
			ActionURL: "/sales/" + sourceID.String(),
			Reason:    "reminder has not been acknowledged on the sale",
		}

	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidTaskType, taskType)
	}
}

// UpdateNotes replaces the free-text notes of a task. Only manual tasks
// and appointment reminders carry independently editable notes; any other
// type is rejected with ErrNotEditable so callers can distinguish "saved"
// from "not applicable".
func (l *Lifecycle) UpdateNotes(ctx context.Context, taskID string, taskType domain.TaskType, notes string) error {
	log := logger.FromContextOrDefault(ctx, l.logger)

	sourceID, err := l.resolve(taskID, taskType)
	if err != nil {
		return err
	}

	if !taskType.NotesEditable() {
		return fmt.Errorf("%w: %s", ErrNotEditable, taskType)
	}

	log.Debug("updating task notes",
		slog.String("task_id", taskID),
		slog.String("task_type", string(taskType)))

	switch taskType {
	case domain.TaskTypeManual:
		task, err := l.manualTasks.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		return l.manualTasks.UpdateNotes(ctx, sourceID, notes, task.UpdatedAt)

	case domain.TaskTypeAppointmentReminder:
		appointment, err := l.appointments.GetByID(ctx, sourceID)
		if err != nil {
			return err
		}
		return l.appointments.UpdateNotes(ctx, sourceID, notes, appointment.UpdatedAt)

	default:
		return fmt.Errorf("%w: %s", ErrNotEditable, taskType)
	}
}

// resolve parses the task ID and cross-checks the declared type against
// the type encoded in the ID.
func (l *Lifecycle) resolve(taskID string, taskType domain.TaskType) (uuid.UUID, error) {
	if !domain.IsValidTaskType(taskType) {
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrInvalidTaskType, taskType)
	}

	encodedType, sourceID, err := ParseTaskID(taskID)
	if err != nil {
		return uuid.Nil, err
	}
	if encodedType != taskType {
		return uuid.Nil, fmt.Errorf("%w: task ID %q does not carry type %s",
			domain.ErrInvalidID, taskID, taskType)
	}

	return sourceID, nil
}

// completeManualTask marks a stored manual task completed under the
// store's compare-and-set discipline. Already-completed tasks are a
// success no-op; completedAt/completedBy never change after the first
// completion.
func (l *Lifecycle) completeManualTask(ctx context.Context, id, completedBy uuid.UUID) error {
	task, err := l.manualTasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task.Status == domain.TaskStatusCompleted {
		return nil
	}
	return l.manualTasks.Complete(ctx, id, completedBy, task.UpdatedAt)
}

// completeAppointment marks the underlying appointment completed under
// the same compare-and-set discipline as manual tasks.
func (l *Lifecycle) completeAppointment(ctx context.Context, id, completedBy uuid.UUID) error {
	appointment, err := l.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if appointment.Status == domain.AppointmentStatusCompleted {
		return nil
	}
	return l.appointments.Complete(ctx, id, completedBy, appointment.UpdatedAt)
}

// saleReminderDone reports whether the sale-side acknowledgement backing
// the given reminder type has been recorded.
func saleReminderDone(sale *domain.Sale, taskType domain.TaskType) bool {
	switch taskType {
	case domain.TaskTypeMaintenanceDue:
		return sale.MaintenanceDone
	case domain.TaskTypeSaleRappel2Years:
		return sale.Rappel2Done
	case domain.TaskTypeSaleRappel7Years:
		return sale.Rappel7Done
	}
	return false
}
