package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/opsdesk/internal/domain"
)

// stubReader is a canned SourceReader for aggregator tests.
type stubReader struct {
	source string
	types  []domain.TaskType
	tasks  []domain.Task
	err    error
	delay  time.Duration
	called *bool
}

func (r *stubReader) Source() string           { return r.source }
func (r *stubReader) Types() []domain.TaskType { return r.types }

func (r *stubReader) Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error) {
	if r.called != nil {
		*r.called = true
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.tasks, r.err
}

func testWindow() Window {
	return Window{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
	}
}

func manualTask(id string, status domain.TaskStatus, due *time.Time, start time.Time) domain.Task {
	return domain.Task{
		ID:        id,
		Type:      domain.TaskTypeManual,
		Status:    status,
		Priority:  domain.TaskPriorityMedium,
		StartDate: start,
		DueDate:   due,
	}
}

func TestAggregateOrdering(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	early := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	tasks := []domain.Task{
		manualTask("task-c", domain.TaskStatusTodo, nil, start),
		manualTask("task-b", domain.TaskStatusTodo, &late, start),
		manualTask("task-a", domain.TaskStatusTodo, &early, start),
		manualTask("task-e", domain.TaskStatusOverdue, &late, start),
		manualTask("task-d", domain.TaskStatusOverdue, &early, start),
	}

	reader := &stubReader{
		source: "tasks",
		types:  []domain.TaskType{domain.TaskTypeManual},
		tasks:  tasks,
	}

	agg := NewAggregator([]SourceReader{reader}, time.Second, nil)
	result, err := agg.Aggregate(context.Background(), testWindow(), Filters{Types: allTypes()})
	require.NoError(t, err)

	// Overdue first, then due date ascending, nil due dates last.
	ids := make([]string, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"task-d", "task-e", "task-a", "task-b", "task-c"}, ids)
	assert.False(t, result.Partial)
	assert.Equal(t, 5, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Overdue)
}

func TestAggregateOrderingTiebreak(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	reader := &stubReader{
		source: "tasks",
		types:  []domain.TaskType{domain.TaskTypeManual},
		tasks: []domain.Task{
			manualTask("task-b", domain.TaskStatusTodo, &due, start),
			manualTask("task-a", domain.TaskStatusTodo, &due, start),
		},
	}

	agg := NewAggregator([]SourceReader{reader}, time.Second, nil)

	// Identical dates fall back to ID ordering, so repeated runs agree.
	for i := 0; i < 3; i++ {
		result, err := agg.Aggregate(context.Background(), testWindow(), Filters{Types: allTypes()})
		require.NoError(t, err)
		require.Len(t, result.Tasks, 2)
		assert.Equal(t, "task-a", result.Tasks[0].ID)
		assert.Equal(t, "task-b", result.Tasks[1].ID)
	}
}

func TestAggregateDegradesOnReaderFailure(t *testing.T) {
	t.Parallel()

	healthy := &stubReader{
		source: "tasks",
		types:  []domain.TaskType{domain.TaskTypeManual},
		tasks: []domain.Task{
			manualTask("task-a", domain.TaskStatusTodo, nil, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)),
		},
	}
	broken := &stubReader{
		source: "payments",
		types:  []domain.TaskType{domain.TaskTypePaymentDue, domain.TaskTypePaymentPeriodEnd},
		err:    errors.New("connection refused"),
	}

	agg := NewAggregator([]SourceReader{healthy, broken}, time.Second, nil)
	result, err := agg.Aggregate(context.Background(), testWindow(), Filters{Types: allTypes()})
	require.NoError(t, err, "a failing source must not fail the aggregation")

	assert.True(t, result.Partial)
	require.Len(t, result.SkippedSources, 1)
	assert.Equal(t, "payments", result.SkippedSources[0].Source)
	assert.Contains(t, result.SkippedSources[0].Reason, "connection refused")

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "task-a", result.Tasks[0].ID)
	assert.Equal(t, 1, result.Stats.Total, "stats cover only the returned set")
}

func TestAggregateDegradesOnReaderTimeout(t *testing.T) {
	t.Parallel()

	slow := &stubReader{
		source: "rentals",
		types:  []domain.TaskType{domain.TaskTypeRentalExpiring},
		delay:  500 * time.Millisecond,
	}

	agg := NewAggregator([]SourceReader{slow}, 20*time.Millisecond, nil)
	result, err := agg.Aggregate(context.Background(), testWindow(), Filters{Types: allTypes()})
	require.NoError(t, err)

	assert.True(t, result.Partial)
	require.Len(t, result.SkippedSources, 1)
	assert.Equal(t, "rentals", result.SkippedSources[0].Source)
}

func TestAggregateSkipsFilteredOutReaders(t *testing.T) {
	t.Parallel()

	var manualCalled, paymentCalled bool
	manual := &stubReader{
		source: "tasks",
		types:  []domain.TaskType{domain.TaskTypeManual},
		called: &manualCalled,
	}
	payments := &stubReader{
		source: "payments",
		types:  []domain.TaskType{domain.TaskTypePaymentDue, domain.TaskTypePaymentPeriodEnd},
		called: &paymentCalled,
	}

	types, err := ParseTypeFilter("payments")
	require.NoError(t, err)

	agg := NewAggregator([]SourceReader{manual, payments}, time.Second, nil)
	_, err = agg.Aggregate(context.Background(), testWindow(), Filters{Types: types})
	require.NoError(t, err)

	assert.False(t, manualCalled, "reader with no selected types must not be queried")
	assert.True(t, paymentCalled)
}

func TestAggregatePostFiltersAssignee(t *testing.T) {
	t.Parallel()

	operator := uuid.New()
	mine := manualTask("task-a", domain.TaskStatusTodo, nil, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC))
	mine.AssignedTo = &domain.AssigneeRef{ID: operator.String()}
	other := manualTask("task-b", domain.TaskStatusTodo, nil, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC))

	reader := &stubReader{
		source: "tasks",
		types:  []domain.TaskType{domain.TaskTypeManual},
		tasks:  []domain.Task{mine, other},
	}

	agg := NewAggregator([]SourceReader{reader}, time.Second, nil)
	result, err := agg.Aggregate(context.Background(), testWindow(), Filters{Types: allTypes(), AssignedTo: &operator})
	require.NoError(t, err)

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "task-a", result.Tasks[0].ID)
}

func TestAggregateRejectsInvalidWindow(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(nil, time.Second, nil)

	_, err := agg.Aggregate(context.Background(), Window{}, Filters{Types: allTypes()})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	inverted := Window{
		Start: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err = agg.Aggregate(context.Background(), inverted, Filters{Types: allTypes()})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestAggregateHidesCompleted(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	reader := &stubReader{
		source: "tasks",
		types:  []domain.TaskType{domain.TaskTypeManual},
		tasks: []domain.Task{
			manualTask("task-a", domain.TaskStatusTodo, nil, start),
			manualTask("task-b", domain.TaskStatusCompleted, nil, start),
		},
	}

	agg := NewAggregator([]SourceReader{reader}, time.Second, nil)
	result, err := agg.Aggregate(context.Background(), testWindow(), Filters{Types: allTypes(), HideCompleted: true})
	require.NoError(t, err)

	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "task-a", result.Tasks[0].ID)
	assert.Equal(t, 1, result.Stats.Total)
	assert.Zero(t, result.Stats.ByStatus[domain.TaskStatusCompleted])
}
