package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/opsdesk/internal/domain"
)

func TestNormalizePayment(t *testing.T) {
	t.Parallel()

	window := Window{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	grace := 7 * 24 * time.Hour

	t.Run("overdue payment inside grace", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		payment := &domain.Payment{
			ID:              uuid.New(),
			Code:            "PAY-0042",
			Amount:          150.00,
			RemainingAmount: 150.00,
			Status:          domain.PaymentStatusPending,
			DueDate:         &due,
			Client:          &domain.ClientRef{ID: "p1", Name: "Foulen Ben Foulen", Type: domain.ClientTypePatient},
		}

		now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		tasks := NormalizePayment(payment, window, now, grace)
		require.Len(t, tasks, 1)

		task := tasks[0]
		assert.Equal(t, domain.TaskTypePaymentDue, task.Type)
		assert.Equal(t, domain.TaskStatusOverdue, task.Status)
		assert.Equal(t, domain.TaskPriorityHigh, task.Priority, "5 days late is inside the 7-day grace")
		assert.False(t, task.CanComplete)
		assert.Equal(t, "/payments/"+payment.ID.String(), task.ActionURL)
		require.NotNil(t, task.RelatedData.Amount)
		assert.InDelta(t, 150.00, *task.RelatedData.Amount, 0.001)
	})

	t.Run("escalates to URGENT past grace", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
		payment := &domain.Payment{
			ID:              uuid.New(),
			Code:            "PAY-0043",
			Amount:          80.00,
			RemainingAmount: 80.00,
			Status:          domain.PaymentStatusPending,
			DueDate:         &due,
		}

		now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
		tasks := NormalizePayment(payment, window, now, grace)
		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskPriorityUrgent, tasks[0].Priority)
	})

	t.Run("settled payment contributes nothing", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		payment := &domain.Payment{
			ID:              uuid.New(),
			Code:            "PAY-0044",
			Amount:          150.00,
			RemainingAmount: 0,
			Status:          domain.PaymentStatusPaid,
			DueDate:         &due,
		}

		tasks := NormalizePayment(payment, window, due, grace)
		assert.Empty(t, tasks)
	})

	t.Run("due date and period end each materialize", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		periodEnd := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
		payment := &domain.Payment{
			ID:              uuid.New(),
			Code:            "PAY-0045",
			Amount:          200.00,
			RemainingAmount: 120.00,
			Status:          domain.PaymentStatusPartial,
			DueDate:         &due,
			PeriodEndDate:   &periodEnd,
		}

		now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		tasks := NormalizePayment(payment, window, now, grace)
		require.Len(t, tasks, 2)
		assert.Equal(t, domain.TaskTypePaymentDue, tasks[0].Type)
		assert.Equal(t, domain.TaskTypePaymentPeriodEnd, tasks[1].Type)
		assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
	})

	t.Run("dates outside the window are excluded", func(t *testing.T) {
		t.Parallel()

		due := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
		payment := &domain.Payment{
			ID:              uuid.New(),
			Code:            "PAY-0046",
			Amount:          60.00,
			RemainingAmount: 60.00,
			Status:          domain.PaymentStatusPending,
			DueDate:         &due,
		}

		tasks := NormalizePayment(payment, window, window.Start, grace)
		assert.Empty(t, tasks)
	})
}
