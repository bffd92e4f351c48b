package feed

import (
	"time"

	"github.com/medirent/opsdesk/internal/domain"
)

// Status and priority derivation shared by the normalizers. These are
// pure view-functions over domain state and the evaluation clock; nothing
// here is ever persisted.

// overlayOverdue upgrades a task's status to OVERDUE when its due date
// has passed at the evaluation instant and the task is not completed.
// OVERDUE is an overlay on TODO/IN_PROGRESS, not a stored fourth state.
func overlayOverdue(t *domain.Task, now time.Time) {
	if t.Status == domain.TaskStatusCompleted {
		return
	}
	if t.IsOverdue(now) {
		t.Status = domain.TaskStatusOverdue
	}
}

// escalateWhenOverdue returns the escalated priority once the due date is
// more than grace past at the evaluation instant, the base priority
// otherwise. A zero grace escalates as soon as the task is overdue.
func escalateWhenOverdue(base, escalated domain.TaskPriority, dueDate *time.Time, now time.Time, grace time.Duration) domain.TaskPriority {
	if dueDate == nil {
		return base
	}
	if now.After(dueDate.Add(grace)) {
		return escalated
	}
	return base
}

// rentalExpiryPriority derives the urgency of an expiring rental: MEDIUM
// by default, HIGH once the end date is within warn of the evaluation
// instant, URGENT once past.
func rentalExpiryPriority(endDate time.Time, now time.Time, warn time.Duration) domain.TaskPriority {
	if endDate.Before(now) {
		return domain.TaskPriorityUrgent
	}
	if !endDate.After(now.Add(warn)) {
		return domain.TaskPriorityHigh
	}
	return domain.TaskPriorityMedium
}
