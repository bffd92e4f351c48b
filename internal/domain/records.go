package domain

import (
	"time"

	"github.com/google/uuid"
)

// This file defines the collaborator domain records the source readers
// project tasks from. Their schema is owned by the surrounding rental and
// sales application; the console only reads them (and, for appointments,
// writes the completion fields).

// DiagnosticStatus represents the processing state of a diagnostic.
type DiagnosticStatus string

// Possible diagnostic status values.
const (
	DiagnosticStatusPending   DiagnosticStatus = "pending"
	DiagnosticStatusScheduled DiagnosticStatus = "scheduled"
	DiagnosticStatusCompleted DiagnosticStatus = "completed"
	DiagnosticStatusCancelled DiagnosticStatus = "cancelled"
)

// Terminal reports whether the diagnostic no longer needs operator action.
func (s DiagnosticStatus) Terminal() bool {
	return s == DiagnosticStatusCompleted || s == DiagnosticStatusCancelled
}

// Diagnostic is a sleep/oxygen diagnostic awaiting processing.
type Diagnostic struct {
	ID            uuid.UUID        `json:"id"`
	Code          string           `json:"code"`
	DeviceName    string           `json:"device_name"`
	Status        DiagnosticStatus `json:"status"`
	ScheduledDate time.Time        `json:"scheduled_date"`
	Patient       *ClientRef       `json:"patient,omitempty"`
	Technician    *AssigneeRef     `json:"technician,omitempty"`
}

// RentalStatus represents the lifecycle state of a rental contract.
type RentalStatus string

// Possible rental status values.
const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusExpired   RentalStatus = "expired"
	RentalStatusReturned  RentalStatus = "returned"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// Terminal reports whether the rental has been closed out.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusReturned || s == RentalStatusCancelled
}

// Rental is an equipment rental contract. Besides its expiry it can carry
// an operator alert, a titration date and a follow-up appointment date,
// each of which materializes as its own task.
type Rental struct {
	ID              uuid.UUID    `json:"id"`
	Code            string       `json:"code"`
	DeviceName      string       `json:"device_name"`
	Status          RentalStatus `json:"status"`
	StartDate       time.Time    `json:"start_date"`
	EndDate         *time.Time   `json:"end_date,omitempty"`
	AlertDate       *time.Time   `json:"alert_date,omitempty"`
	AlertMessage    string       `json:"alert_message,omitempty"`
	TitrationDate   *time.Time   `json:"titration_date,omitempty"`
	AppointmentDate *time.Time   `json:"appointment_date,omitempty"`
	Patient         *ClientRef   `json:"patient,omitempty"`
	AssignedTo      *AssigneeRef `json:"assigned_to,omitempty"`
}

// PaymentStatus represents the settlement state of a payment.
type PaymentStatus string

// Possible payment status values.
const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment is an amount owed by a patient or company. Settled reports the
// completion precondition for PAYMENT_DUE tasks: the remaining balance
// must be independently zero.
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	Code            string        `json:"code"`
	Amount          float64       `json:"amount"`
	RemainingAmount float64       `json:"remaining_amount"`
	Status          PaymentStatus `json:"status"`
	DueDate         *time.Time    `json:"due_date,omitempty"`
	PeriodEndDate   *time.Time    `json:"period_end_date,omitempty"`
	Client          *ClientRef    `json:"client,omitempty"`
}

// Settled reports whether nothing remains to be paid.
func (p *Payment) Settled() bool {
	return p.RemainingAmount <= 0 || p.Status == PaymentStatusPaid || p.Status == PaymentStatusCancelled
}

// AppointmentStatus represents the state of a scheduled appointment.
type AppointmentStatus string

// Possible appointment status values.
const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a scheduled patient visit. Reminder tasks for
// appointments are directly completable and carry editable notes, so the
// record keeps completion fields and an UpdatedAt used as the
// compare-and-set token for concurrent writes.
type Appointment struct {
	ID            uuid.UUID         `json:"id"`
	Code          string            `json:"code"`
	Kind          string            `json:"kind"`
	Location      string            `json:"location,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        AppointmentStatus `json:"status"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	CompletedBy   *uuid.UUID        `json:"completed_by,omitempty"`
	Patient       *ClientRef        `json:"patient,omitempty"`
	AssignedTo    *AssigneeRef      `json:"assigned_to,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// CNAMBon is a CNAM reimbursement voucher. Its renewal window opens a
// configured lead time before EndDate and drives CNAM_RENEWAL tasks.
type CNAMBon struct {
	ID         uuid.UUID  `json:"id"`
	BonNumber  string     `json:"bon_number"`
	DeviceName string     `json:"device_name"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	Renewed    bool       `json:"renewed"`
	Patient    *ClientRef `json:"patient,omitempty"`
}

// Sale is a completed equipment sale. Sold devices carry a periodic
// maintenance schedule plus commercial follow-up reminders at two and
// seven years after the sale date.
type Sale struct {
	ID                  uuid.UUID  `json:"id"`
	Code                string     `json:"code"`
	DeviceName          string     `json:"device_name"`
	SaleDate            time.Time  `json:"sale_date"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date,omitempty"`
	MaintenanceDone     bool       `json:"maintenance_done"`
	Rappel2Done         bool       `json:"rappel_2_done"`
	Rappel7Done         bool       `json:"rappel_7_done"`
	Client              *ClientRef `json:"client,omitempty"`
}

// Rappel2Date is the two-year follow-up reminder date for the sale.
func (s *Sale) Rappel2Date() time.Time {
	return s.SaleDate.AddDate(2, 0, 0)
}

// Rappel7Date is the seven-year renewal reminder date for the sale.
func (s *Sale) Rappel7Date() time.Time {
	return s.SaleDate.AddDate(7, 0, 0)
}

// StaffUser is an operator account, read only to populate the assignment
// filter. Accounts and sessions are owned by the surrounding application.
type StaffUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// Name returns the user's display name.
func (u *StaffUser) Name() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
