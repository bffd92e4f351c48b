package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
)

// The interfaces below are the read (and, where the lifecycle needs them,
// write) contracts against the collaborator domain stores owned by the
// surrounding rental and sales application. Each exposes "list records
// relevant in [start, end]" for its reader plus the lookups the lifecycle
// controller needs to verify completion preconditions.

// DiagnosticStore reads pending diagnostics.
type DiagnosticStore interface {
	// ListPendingInWindow returns diagnostics that are not in a terminal
	// status and whose scheduled date falls inside [start, end].
	ListPendingInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Diagnostic, error)

	// GetByID retrieves a diagnostic by ID.
	// Returns ErrDiagnosticNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagnostic, error)
}

// RentalStore reads rental contracts and their reminder dates.
type RentalStore interface {
	// ListRelevantInWindow returns non-terminal rentals whose end date,
	// alert date, titration date or appointment date falls inside
	// [start, end].
	ListRelevantInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Rental, error)

	// GetByID retrieves a rental by ID.
	// Returns ErrRentalNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
}

// PaymentStore reads payments due and period endings.
type PaymentStore interface {
	// ListDueInWindow returns unsettled payments whose due date or period
	// end date falls inside [start, end].
	ListDueInWindow(ctx context.Context, start, end time.Time) ([]*domain.Payment, error)

	// GetByID retrieves a payment by ID.
	// Returns ErrPaymentNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

// AppointmentStore reads appointments and applies reminder completion.
// Appointment reminders are the one derived type with direct completion
// and editable notes, so this contract carries the write paths too.
type AppointmentStore interface {
	// ListInWindow returns appointments scheduled inside [start, end],
	// including completed ones.
	ListInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Appointment, error)

	// GetByID retrieves an appointment by ID.
	// Returns ErrAppointmentNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)

	// Complete marks the appointment completed with a compare-and-set on
	// expectedUpdatedAt; a lost race returns ErrWriteConflict. Completing
	// an already-completed appointment is a no-op returning nil.
	Complete(ctx context.Context, id, completedBy uuid.UUID, expectedUpdatedAt time.Time) error

	// UpdateNotes replaces the appointment's notes under the same
	// compare-and-set discipline as Complete.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string, expectedUpdatedAt time.Time) error
}

// CNAMBonStore reads CNAM reimbursement bons approaching renewal.
type CNAMBonStore interface {
	// ListRenewableInWindow returns unrenewed bons whose renewal date
	// (end date minus the renewal lead time) falls inside [start, end].
	ListRenewableInWindow(ctx context.Context, start, end time.Time, renewalLead time.Duration) ([]*domain.CNAMBon, error)

	// GetByID retrieves a bon by ID.
	// Returns ErrBonNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CNAMBon, error)
}

// SaleStore reads sales for maintenance and rappel reminders.
type SaleStore interface {
	// ListRemindableInWindow returns sales with an open maintenance date
	// or an unacknowledged 2-year/7-year rappel date inside [start, end].
	ListRemindableInWindow(ctx context.Context, start, end time.Time) ([]*domain.Sale, error)

	// GetByID retrieves a sale by ID.
	// Returns ErrSaleNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
}

// UserStore reads staff users for the assignment filter.
type UserStore interface {
	// List returns all staff users ordered by name.
	List(ctx context.Context) ([]*domain.StaffUser, error)
}
