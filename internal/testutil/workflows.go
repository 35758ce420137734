package testutil

import (
	"context"
	"sync"
	"time"

	"go-weave/internal/domain"

	"github.com/google/uuid"
)

// WorkflowRepository is an in-memory ports.WorkflowRepository. GetWithGraph
// reads the graph from the GraphStore it was built with, when there is one.
type WorkflowRepository struct {
	mu        sync.Mutex
	workflows map[uuid.UUID]domain.Workflow
	graphs    *GraphStore
}

func NewWorkflowRepository(graphs *GraphStore) *WorkflowRepository {
	return &WorkflowRepository{
		workflows: make(map[uuid.UUID]domain.Workflow),
		graphs:    graphs,
	}
}

func (r *WorkflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if workflow.ID == uuid.Nil {
		workflow.ID = uuid.New()
	}
	if _, exists := r.workflows[workflow.ID]; exists {
		return domain.ErrDuplicate
	}
	now := time.Now()
	workflow.CreatedAt, workflow.UpdatedAt = now, now
	stored := *workflow
	stored.Nodes, stored.Edges = nil, nil
	r.workflows[workflow.ID] = stored
	return nil
}

func (r *WorkflowRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wf, ok := r.workflows[id]
	if !ok || wf.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &wf, nil
}

func (r *WorkflowRepository) GetWithGraph(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error) {
	wf, err := r.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	wf.Nodes, wf.Edges = []domain.WorkflowNode{}, []domain.WorkflowEdge{}
	if r.graphs != nil {
		wf.Nodes = append(wf.Nodes, r.graphs.Nodes(id)...)
		wf.Edges = append(wf.Edges, r.graphs.Edges(id)...)
	}
	return wf, nil
}

func (r *WorkflowRepository) List(ctx context.Context, ownerID string, templatesOnly bool) ([]domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Workflow{}
	for _, wf := range r.workflows {
		if wf.OwnerID != ownerID || (templatesOnly && !wf.IsTemplate) {
			continue
		}
		out = append(out, wf)
	}
	return out, nil
}

func (r *WorkflowRepository) Update(ctx context.Context, id uuid.UUID, ownerID string, patch domain.WorkflowPatch) (*domain.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wf, ok := r.workflows[id]
	if !ok || wf.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		wf.Name = *patch.Name
	}
	if patch.Description != nil {
		wf.Description = patch.Description
	}
	if patch.Metadata != nil {
		wf.Metadata = patch.Metadata
	}
	wf.UpdatedAt = time.Now()
	r.workflows[id] = wf
	return &wf, nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wf, ok := r.workflows[id]
	if !ok || wf.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.workflows, id)
	return nil
}
