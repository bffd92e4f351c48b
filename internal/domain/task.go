package domain

import (
	"time"
)

// TaskType identifies the business event a task was materialized from.
// TaskTypeManual is the only type persisted as its own row; every other
// type is a read-time projection over its owning domain's records.
type TaskType string

// The closed set of task types surfaced by the console.
const (
	TaskTypeManual              TaskType = "TASK"
	TaskTypeDiagnosticPending   TaskType = "DIAGNOSTIC_PENDING"
	TaskTypeRentalExpiring      TaskType = "RENTAL_EXPIRING"
	TaskTypePaymentDue          TaskType = "PAYMENT_DUE"
	TaskTypeAppointmentReminder TaskType = "APPOINTMENT_REMINDER"
	TaskTypeCNAMRenewal         TaskType = "CNAM_RENEWAL"
	TaskTypeMaintenanceDue      TaskType = "MAINTENANCE_DUE"
	TaskTypeSaleRappel2Years    TaskType = "SALE_RAPPEL_2YEARS"
	TaskTypeSaleRappel7Years    TaskType = "SALE_RAPPEL_7YEARS"
	TaskTypeRentalAlert         TaskType = "RENTAL_ALERT"
	TaskTypeRentalTitration     TaskType = "RENTAL_TITRATION"
	TaskTypeRentalAppointment   TaskType = "RENTAL_APPOINTMENT"
	TaskTypePaymentPeriodEnd    TaskType = "PAYMENT_PERIOD_END"
)

// AllTaskTypes lists every task type in a stable order.
var AllTaskTypes = []TaskType{
	TaskTypeManual,
	TaskTypeDiagnosticPending,
	TaskTypeRentalExpiring,
	TaskTypePaymentDue,
	TaskTypeAppointmentReminder,
	TaskTypeCNAMRenewal,
	TaskTypeMaintenanceDue,
	TaskTypeSaleRappel2Years,
	TaskTypeSaleRappel7Years,
	TaskTypeRentalAlert,
	TaskTypeRentalTitration,
	TaskTypeRentalAppointment,
	TaskTypePaymentPeriodEnd,
}

// IsValidTaskType reports whether t is a member of the closed type set.
func IsValidTaskType(t TaskType) bool {
	for _, known := range AllTaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DirectlyCompletable reports whether the lifecycle controller supports
// unconditional direct completion for this type. Every other type only
// "completes" as a side effect of the underlying business action.
func (t TaskType) DirectlyCompletable() bool {
	return t == TaskTypeManual || t == TaskTypeAppointmentReminder
}

// NotesEditable reports whether free-text notes can be edited
// independently of the owning domain record.
func (t TaskType) NotesEditable() bool {
	return t == TaskTypeManual || t == TaskTypeAppointmentReminder
}

// TaskStatus represents the lifecycle state of a task. OVERDUE is a
// derived overlay on TODO/IN_PROGRESS, never stored.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusOverdue    TaskStatus = "OVERDUE"
)

// IsValidTaskStatus reports whether s is a known status.
func IsValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// IsValidTaskPriority reports whether p is a known priority.
func IsValidTaskPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// AssigneeRef identifies the staff member a task is assigned to.
// A nil reference is the first-class "unassigned" state.
type AssigneeRef struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}

// ClientType distinguishes patient clients from company clients.
type ClientType string

// Possible client types.
const (
	ClientTypePatient ClientType = "patient"
	ClientTypeCompany ClientType = "company"
)

// ClientRef identifies the patient or company a task concerns.
type ClientRef struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      ClientType `json:"type"`
	Telephone string     `json:"telephone,omitempty"`
}

// RelatedData is the loosely-typed bag of per-domain details attached to
// a task. Present fields vary by task type.
type RelatedData struct {
	DeviceName      string   `json:"device_name,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	DiagnosticID    string   `json:"diagnostic_id,omitempty"`
	DiagnosticCode  string   `json:"diagnostic_code,omitempty"`
	RentalID        string   `json:"rental_id,omitempty"`
	RentalCode      string   `json:"rental_code,omitempty"`
	AppointmentID   string   `json:"appointment_id,omitempty"`
	AppointmentCode string   `json:"appointment_code,omitempty"`
	PaymentID       string   `json:"payment_id,omitempty"`
	PaymentCode     string   `json:"payment_code,omitempty"`
	BonNumber       string   `json:"bon_number,omitempty"`
	SaleCode        string   `json:"sale_code,omitempty"`
}

// Task is the normalized envelope every source record is projected into.
// It is transient: except for TaskTypeManual it is materialized on every
// aggregation and never stored.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Type        TaskType     `json:"type"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   time.Time    `json:"start_date"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CompletedBy string       `json:"completed_by,omitempty"`
	AssignedTo  *AssigneeRef `json:"assigned_to,omitempty"`
	Client      *ClientRef   `json:"client,omitempty"`
	RelatedData RelatedData  `json:"related_data"`
	ActionURL   string       `json:"action_url,omitempty"`
	ActionLabel string       `json:"action_label,omitempty"`
	CanComplete bool         `json:"can_complete"`
}

// IsOverdue reports whether the task's due date has passed at the given
// instant without the task having been completed. The overlay is always
// evaluated against the caller's clock, never cached.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}
