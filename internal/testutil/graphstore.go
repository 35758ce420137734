package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"

	"github.com/google/uuid"
)

var ErrInjected = errors.New("injected failure")

// GraphStore is an in-memory ports.GraphStore. Transactions snapshot the
// whole store and restore it when fn fails. It enforces the same constraints
// as the SQL schema: unique ids and edges pointing at existing nodes.
type GraphStore struct {
	mu    sync.Mutex
	nodes []domain.WorkflowNode
	edges []domain.WorkflowEdge

	// Calls records the operation order, e.g. "delete_edges".
	Calls []string

	FailInsertNodes bool
	FailInsertEdges bool
}

func NewGraphStore() *GraphStore {
	return &GraphStore{}
}

func (s *GraphStore) Transaction(ctx context.Context, fn func(tx ports.GraphStore) error) error {
	s.mu.Lock()
	nodes := slices.Clone(s.nodes)
	edges := slices.Clone(s.edges)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.nodes, s.edges = nodes, edges
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *GraphStore) DeleteEdges(ctx context.Context, workflowID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "delete_edges")
	s.edges = slices.DeleteFunc(s.edges, func(e domain.WorkflowEdge) bool { return e.WorkflowID == workflowID })
	return nil
}

func (s *GraphStore) DeleteNodes(ctx context.Context, workflowID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "delete_nodes")
	for _, e := range s.edges {
		if e.WorkflowID == workflowID {
			return fmt.Errorf("node delete blocked by edge %s", e.ID)
		}
	}
	s.nodes = slices.DeleteFunc(s.nodes, func(n domain.WorkflowNode) bool { return n.WorkflowID == workflowID })
	return nil
}

func (s *GraphStore) InsertNodes(ctx context.Context, nodes []domain.WorkflowNode) ([]domain.WorkflowNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "insert_nodes")
	if s.FailInsertNodes {
		return nil, ErrInjected
	}

	out := make([]domain.WorkflowNode, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if s.hasNode(n.ID) {
			return nil, fmt.Errorf("duplicate node id %s", n.ID)
		}
		s.nodes = append(s.nodes, n)
		out = append(out, n)
	}
	return out, nil
}

func (s *GraphStore) InsertEdges(ctx context.Context, edges []domain.WorkflowEdge) ([]domain.WorkflowEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "insert_edges")
	if s.FailInsertEdges {
		return nil, ErrInjected
	}

	out := make([]domain.WorkflowEdge, 0, len(edges))
	for _, e := range edges {
		if !s.hasNode(e.SourceNodeID) || !s.hasNode(e.TargetNodeID) {
			return nil, fmt.Errorf("edge %s -> %s references a missing node", e.SourceNodeID, e.TargetNodeID)
		}
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if s.hasEdge(e.ID) {
			return nil, fmt.Errorf("duplicate edge id %s", e.ID)
		}
		s.edges = append(s.edges, e)
		out = append(out, e)
	}
	return out, nil
}

// Nodes returns the stored nodes of one workflow in insertion order.
func (s *GraphStore) Nodes(workflowID uuid.UUID) []domain.WorkflowNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WorkflowNode
	for _, n := range s.nodes {
		if n.WorkflowID == workflowID {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns the stored edges of one workflow in insertion order.
func (s *GraphStore) Edges(workflowID uuid.UUID) []domain.WorkflowEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WorkflowEdge
	for _, e := range s.edges {
		if e.WorkflowID == workflowID {
			out = append(out, e)
		}
	}
	return out
}

func (s *GraphStore) hasNode(id uuid.UUID) bool {
	for _, n := range s.nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (s *GraphStore) hasEdge(id uuid.UUID) bool {
	for _, e := range s.edges {
		if e.ID == id {
			return true
		}
	}
	return false
}
