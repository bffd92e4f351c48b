package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/medirent/opsdesk/internal/domain"
)

func TestNormalizeDiagnostic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("pending diagnostic is TODO", func(t *testing.T) {
		t.Parallel()

		rec := &domain.Diagnostic{
			ID:            uuid.New(),
			Code:          "DIAG-0007",
			DeviceName:    "ApneaLink Air",
			Status:        domain.DiagnosticStatusPending,
			ScheduledDate: now.Add(72 * time.Hour),
		}

		task := NormalizeDiagnostic(rec, now)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, "DIAG-0007", task.RelatedData.DiagnosticCode)
		assert.False(t, task.CanComplete)
	})

	t.Run("scheduled diagnostic is IN_PROGRESS", func(t *testing.T) {
		t.Parallel()

		rec := &domain.Diagnostic{
			ID:            uuid.New(),
			Code:          "DIAG-0008",
			Status:        domain.DiagnosticStatusScheduled,
			ScheduledDate: now.Add(24 * time.Hour),
		}

		task := NormalizeDiagnostic(rec, now)
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	})

	t.Run("past schedule escalates and overlays overdue", func(t *testing.T) {
		t.Parallel()

		rec := &domain.Diagnostic{
			ID:            uuid.New(),
			Code:          "DIAG-0009",
			Status:        domain.DiagnosticStatusPending,
			ScheduledDate: now.Add(-24 * time.Hour),
		}

		task := NormalizeDiagnostic(rec, now)
		assert.Equal(t, domain.TaskStatusOverdue, task.Status)
		assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
	})
}
