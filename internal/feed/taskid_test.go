package feed

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/opsdesk/internal/domain"
)

func TestTaskIDRoundTrip(t *testing.T) {
	t.Parallel()

	for _, taskType := range domain.AllTaskTypes {
		taskType := taskType
		t.Run(string(taskType), func(t *testing.T) {
			t.Parallel()

			sourceID := uuid.New()
			id := TaskID(taskType, sourceID)

			parsedType, parsedID, err := ParseTaskID(id)
			require.NoError(t, err)
			assert.Equal(t, taskType, parsedType)
			assert.Equal(t, sourceID, parsedID)
		})
	}
}

func TestTaskIDIsDeterministic(t *testing.T) {
	t.Parallel()

	sourceID := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.Equal(t,
		"payment_due-7c9e6679-7425-40de-944b-e07fc1f90ae7",
		TaskID(domain.TaskTypePaymentDue, sourceID))
	assert.Equal(t,
		TaskID(domain.TaskTypePaymentDue, sourceID),
		TaskID(domain.TaskTypePaymentDue, sourceID))
}

func TestParseTaskIDErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"empty", "", domain.ErrInvalidID},
		{"no separator", "task", domain.ErrInvalidID},
		{"empty prefix", "-7c9e6679-7425-40de-944b-e07fc1f90ae7", domain.ErrInvalidID},
		{"unknown type", "invoice-7c9e6679-7425-40de-944b-e07fc1f90ae7", domain.ErrInvalidTaskType},
		{"bad uuid", "task-not-a-uuid", domain.ErrInvalidID},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParseTaskID(tt.id)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
