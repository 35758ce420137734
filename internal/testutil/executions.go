package testutil

import (
	"context"
	"sync"

	"go-weave/internal/domain"

	"github.com/google/uuid"
)

// ExecutionRepository is an in-memory ports.ExecutionRepository.
type ExecutionRepository struct {
	mu             sync.Mutex
	executions     []domain.WorkflowExecution
	nodeExecutions []domain.NodeExecution
}

func NewExecutionRepository() *ExecutionRepository {
	return &ExecutionRepository{}
}

func (r *ExecutionRepository) AddExecution(e domain.WorkflowExecution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions = append(r.executions, e)
}

func (r *ExecutionRepository) AddNodeExecutions(rows ...domain.NodeExecution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodeExecutions = append(r.nodeExecutions, rows...)
}

func (r *ExecutionRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.executions {
		if e.ID == id && e.OwnerID == ownerID {
			found := e
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ExecutionRepository) ListForWorkflow(ctx context.Context, workflowID uuid.UUID, ownerID string) ([]domain.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkflowExecution{}
	for _, e := range r.executions {
		if e.WorkflowID == workflowID && e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListNodeExecutions returns rows in insertion order; ordering is the caller's job here.
func (r *ExecutionRepository) ListNodeExecutions(ctx context.Context, executionID uuid.UUID) ([]domain.NodeExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NodeExecution
	for _, n := range r.nodeExecutions {
		if n.ExecutionID == executionID {
			out = append(out, n)
		}
	}
	return out, nil
}
