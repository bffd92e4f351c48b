package feed

import (
	"github.com/medirent/opsdesk/internal/domain"
)

// Stats summarizes exactly one returned task set. It is recomputed for
// every result (including after completed-hiding) so counts never
// describe a stale snapshot.
type Stats struct {
	Total      int                         `json:"total"`
	Overdue    int                         `json:"overdue"`
	ByStatus   map[domain.TaskStatus]int   `json:"by_status"`
	ByPriority map[domain.TaskPriority]int `json:"by_priority"`
	ByType     map[domain.TaskType]int     `json:"by_type"`
}

// ComputeStats tallies the given tasks. The per-status, per-priority and
// per-type counts each sum to Total.
func ComputeStats(tasks []domain.Task) Stats {
	stats := Stats{
		Total:      len(tasks),
		ByStatus:   make(map[domain.TaskStatus]int),
		ByPriority: make(map[domain.TaskPriority]int),
		ByType:     make(map[domain.TaskType]int),
	}

	for i := range tasks {
		t := &tasks[i]
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		stats.ByType[t.Type]++
		if t.Status == domain.TaskStatusOverdue {
			stats.Overdue++
		}
	}

	return stats
}
