package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medirent/opsdesk/internal/domain"
)

func TestTaskTypeCompletionRules(t *testing.T) {
	t.Parallel()

	// Exactly two types support direct completion and independent notes;
	// every other type is a projection resolved in its owning domain.
	direct := map[domain.TaskType]bool{
		domain.TaskTypeManual:              true,
		domain.TaskTypeAppointmentReminder: true,
	}

	for _, taskType := range domain.AllTaskTypes {
		assert.Equal(t, direct[taskType], taskType.DirectlyCompletable(), "DirectlyCompletable(%s)", taskType)
		assert.Equal(t, direct[taskType], taskType.NotesEditable(), "NotesEditable(%s)", taskType)
	}
}

func TestIsValidTaskType(t *testing.T) {
	t.Parallel()

	for _, taskType := range domain.AllTaskTypes {
		assert.True(t, domain.IsValidTaskType(taskType), "%s", taskType)
	}
	assert.False(t, domain.IsValidTaskType("RENTAL"))
	assert.False(t, domain.IsValidTaskType(""))
}

func TestTaskIsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		dueDate *time.Time
		status  domain.TaskStatus
		want    bool
	}{
		{"due date passed", &past, domain.TaskStatusTodo, true},
		{"due date ahead", &future, domain.TaskStatusTodo, false},
		{"no due date", nil, domain.TaskStatusTodo, false},
		{"completed task never overdue", &past, domain.TaskStatusCompleted, false},
		{"in progress past due", &past, domain.TaskStatusInProgress, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := domain.Task{DueDate: tt.dueDate, Status: tt.status}
			assert.Equal(t, tt.want, task.IsOverdue(now))
		})
	}
}
