package feed

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
)

// Task IDs encode the source type and the source record ID so the same
// domain event always materializes with the same ID, and so lifecycle
// operations can route back to the owning record. Format:
// lowercased type, a dash, then the source UUID, e.g.
// "payment_due-7c9e6679-7425-40de-944b-e07fc1f90ae7".

// TaskID builds the deterministic task ID for a (type, source record) pair.
func TaskID(taskType domain.TaskType, sourceID uuid.UUID) string {
	return strings.ToLower(string(taskType)) + "-" + sourceID.String()
}

// ParseTaskID splits a task ID back into its type and source record ID.
// The type prefix contains no dashes, so the first dash is the separator.
func ParseTaskID(id string) (domain.TaskType, uuid.UUID, error) {
	prefix, rest, found := strings.Cut(id, "-")
	if !found || prefix == "" || rest == "" {
		return "", uuid.Nil, fmt.Errorf("%w: malformed task ID %q", domain.ErrInvalidID, id)
	}

	taskType := domain.TaskType(strings.ToUpper(prefix))
	if !domain.IsValidTaskType(taskType) {
		return "", uuid.Nil, fmt.Errorf("%w: unknown task type in ID %q", domain.ErrInvalidTaskType, id)
	}

	sourceID, err := uuid.Parse(rest)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: bad source ID in task ID %q", domain.ErrInvalidID, id)
	}

	return taskType, sourceID, nil
}
