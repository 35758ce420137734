// Package tracker turns a run's node-execution rows into a progress report.
package tracker

import (
	"context"
	"math"
	"sort"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/metrics"

	"github.com/google/uuid"
)

type Progress struct {
	Execution       *domain.WorkflowExecution `json:"execution"`
	NodeExecutions  []domain.NodeExecution    `json:"node_executions"`
	CurrentStep     int                       `json:"current_step"`
	TotalSteps      int                       `json:"total_steps"`
	ProgressPercent int                       `json:"progress_percent"`
}

type Tracker struct {
	repo ports.ExecutionRepository
}

func NewTracker(repo ports.ExecutionRepository) *Tracker {
	return &Tracker{repo: repo}
}

// GetProgress is read-only. A run that does not belong to callerID is
// reported as domain.ErrNotFound, the same as a run that does not exist.
func (t *Tracker) GetProgress(ctx context.Context, executionID uuid.UUID, callerID string) (*Progress, error) {
	metrics.ProgressPolls.Inc()

	execution, err := t.repo.GetForOwner(ctx, executionID, callerID)
	if err != nil {
		return nil, err
	}

	nodes, err := t.repo.ListNodeExecutions(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []domain.NodeExecution{}
	}
	SortByStart(nodes)

	current := 0
	for _, n := range nodes {
		if n.Status == domain.StatusCompleted {
			current++
		}
	}

	return &Progress{
		Execution:       execution,
		NodeExecutions:  nodes,
		CurrentStep:     current,
		TotalSteps:      len(nodes),
		ProgressPercent: Percent(current, len(nodes)),
	}, nil
}

// Percent is round(current/total*100), or 0 when total is 0.
func Percent(current, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(total) * 100))
}

// SortByStart orders rows by start time ascending. Rows that never started
// go last; ties keep their original order.
func SortByStart(nodes []domain.NodeExecution) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].StartedAt, nodes[j].StartedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
