package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
)

// Clock supplies "now" to status and priority derivation. Injected so
// tests can pin the evaluation instant.
type Clock func() time.Time

// Window is the inclusive time window a feed query covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate rejects zero or inverted windows.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidWindow)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window (inclusive bounds).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Filters narrows an aggregation to a set of task types and, optionally,
// one assignee. HideCompleted drops COMPLETED tasks before stats are
// computed so the stats always describe exactly the returned set.
type Filters struct {
	Types         TypeSet
	AssignedTo    *uuid.UUID
	HideCompleted bool
}

// Matches reports whether a normalized task passes the filter set.
func (f Filters) Matches(t *domain.Task) bool {
	if !f.Types.Contains(t.Type) {
		return false
	}
	if f.AssignedTo != nil {
		if t.AssignedTo == nil || t.AssignedTo.ID != f.AssignedTo.String() {
			return false
		}
	}
	if f.HideCompleted && t.Status == domain.TaskStatusCompleted {
		return false
	}
	return true
}

// SkippedSource records one source reader that failed or timed out during
// an aggregation. The feed degrades instead of failing, but the caller is
// told the result is partial.
type SkippedSource struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Result is an aggregated, filtered, ordered task feed plus the stats
// computed over exactly that task set.
type Result struct {
	Tasks          []domain.Task   `json:"tasks"`
	Stats          Stats           `json:"stats"`
	Partial        bool            `json:"partial"`
	SkippedSources []SkippedSource `json:"skipped_sources,omitempty"`
}

// SourceReader is the per-domain adapter contract: query the owning store
// for records whose relevant date falls inside the window and project
// them into normalized tasks. Readers never perform cross-domain joins.
type SourceReader interface {
	// Source names the reader for logging and degradation reporting.
	Source() string

	// Types lists the task types this reader can emit, letting the
	// aggregator skip readers excluded by the type filter.
	Types() []domain.TaskType

	// Fetch returns normalized tasks for the window. A failure aborts
	// only this source, never the whole aggregation.
	Fetch(ctx context.Context, window Window, filters Filters) ([]domain.Task, error)
}
