package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/platform/logger"
)

// Aggregator fans a feed query out to every enabled source reader,
// merges the normalized tasks, orders them overdue-first and computes
// stats over the filtered set. Aggregation is read-only with no shared
// mutable state between readers, so it is safe to retry and to run
// concurrently for different windows.
type Aggregator struct {
	readers       []SourceReader
	readerTimeout time.Duration
	logger        *slog.Logger
}

// NewAggregator creates an Aggregator over the given readers. Each
// reader's Fetch is bounded by readerTimeout; a reader exceeding it
// contributes an empty result and a recorded degradation.
func NewAggregator(readers []SourceReader, readerTimeout time.Duration, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{
		readers:       readers,
		readerTimeout: readerTimeout,
		logger:        log.With(slog.String("component", "aggregator")),
	}
}

// readerOutcome is one reader's contribution to a scatter/gather round.
type readerOutcome struct {
	source string
	tasks  []domain.Task
	err    error
}

// Aggregate runs the scatter/gather for one window and filter set.
// Readers whose task types are all excluded by the filter are skipped
// outright. A failing or timed-out reader degrades the result (partial
// flag plus a skipped-source entry) but never aborts the aggregation or
// blocks its siblings.
func (a *Aggregator) Aggregate(ctx context.Context, window Window, filters Filters) (*Result, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, a.logger)

	enabled := make([]SourceReader, 0, len(a.readers))
	for _, r := range a.readers {
		if filters.Types.ContainsAny(r.Types()) {
			enabled = append(enabled, r)
		}
	}

	outcomes := make(chan readerOutcome, len(enabled))
	var wg sync.WaitGroup

	for _, reader := range enabled {
		wg.Add(1)
		go func(r SourceReader) {
			defer wg.Done()

			readerCtx, cancel := context.WithTimeout(ctx, a.readerTimeout)
			defer cancel()

			tasks, err := r.Fetch(readerCtx, window, filters)
			outcomes <- readerOutcome{source: r.Source(), tasks: tasks, err: err}
		}(reader)
	}

	wg.Wait()
	close(outcomes)

	result := &Result{Tasks: []domain.Task{}}
	for outcome := range outcomes {
		if outcome.err != nil {
			log.Warn("source reader degraded, omitting its tasks",
				slog.String("source", outcome.source),
				slog.String("error", outcome.err.Error()))
			result.Partial = true
			result.SkippedSources = append(result.SkippedSources, SkippedSource{
				Source: outcome.source,
				Reason: outcome.err.Error(),
			})
			continue
		}

		for _, task := range outcome.tasks {
			if filters.Matches(&task) {
				result.Tasks = append(result.Tasks, task)
			}
		}
	}

	sortTasks(result.Tasks)
	sort.Slice(result.SkippedSources, func(i, j int) bool {
		return result.SkippedSources[i].Source < result.SkippedSources[j].Source
	})
	result.Stats = ComputeStats(result.Tasks)

	log.Debug("aggregation complete",
		slog.Int("task_count", len(result.Tasks)),
		slog.Int("skipped_sources", len(result.SkippedSources)),
		slog.Bool("partial", result.Partial))

	return result, nil
}

// sortTasks orders the merged feed so operators see the most urgent items
// first regardless of type: overdue before everything else, then due date
// ascending with nil due dates last, then start date ascending, then ID
// so the ordering is fully deterministic.
func sortTasks(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]

		aOverdue := a.Status == domain.TaskStatusOverdue
		bOverdue := b.Status == domain.TaskStatusOverdue
		if aOverdue != bOverdue {
			return aOverdue
		}

		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}

		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}

		return a.ID < b.ID
	})
}
