// Package graphsync replaces a workflow's stored graph with the graph a client
// submits.
//
// Clients hold nodes under temporary ids until the first save, so each save
// carries a mix of durable ids, temp ids and labels. The synchronizer deletes
// the stored graph, inserts the submitted nodes, and then resolves every edge
// endpoint against what was just inserted. Edges whose endpoints cannot be
// resolved are dropped instead of failing the save.
package graphsync

import (
	"context"
	"fmt"
	"time"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/log"
	"go-weave/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeInput is a node as submitted by the client.
type NodeInput struct {
	ID             string
	TempID         string
	Type           domain.NodeType
	Label          string
	Position       Position
	Config         datatypes.JSON
	ServerID       *string
	CommandName    *string
	ExecutionOrder *int
}

// EdgeInput is an edge as submitted by the client. Each endpoint may be given
// as a durable id, a temp id, or a node label.
type EdgeInput struct {
	SourceNodeID string
	TargetNodeID string
	SourceTempID string
	TargetTempID string
	Condition    *string
	DataMapping  datatypes.JSON
}

type Result struct {
	Nodes []domain.WorkflowNode
	Edges []domain.WorkflowEdge

	// IDMap merges TempIDs and Labels; a temp id wins over an equal label.
	IDMap   map[string]uuid.UUID
	TempIDs map[string]uuid.UUID
	Labels  map[string]uuid.UUID

	DroppedEdges int
}

type Synchronizer struct {
	store  ports.GraphStore
	logger *logrus.Logger
}

func NewSynchronizer(store ports.GraphStore) *Synchronizer {
	return &Synchronizer{
		store:  store,
		logger: log.GetLogger(),
	}
}

// Sync overwrites the graph of workflowID with nodes and edges. Callers must
// submit the complete graph every time. The workflow's ownership is not
// checked here.
func (s *Synchronizer) Sync(ctx context.Context, workflowID uuid.UUID, nodes []NodeInput, edges []EdgeInput) (*Result, error) {
	start := time.Now()
	defer func() { metrics.GraphSyncDuration.Observe(time.Since(start).Seconds()) }()

	rows, err := buildNodes(workflowID, nodes)
	if err != nil {
		metrics.GraphSyncs.WithLabelValues("invalid").Inc()
		return nil, err
	}

	var result *Result
	err = s.store.Transaction(ctx, func(tx ports.GraphStore) error {
		// edges first: they reference the nodes
		if err := tx.DeleteEdges(ctx, workflowID); err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}
		if err := tx.DeleteNodes(ctx, workflowID); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}

		saved := []domain.WorkflowNode{}
		if len(rows) > 0 {
			inserted, err := tx.InsertNodes(ctx, rows)
			if err != nil {
				return fmt.Errorf("insert nodes: %w", err)
			}
			saved = inserted
		}

		res := &Result{Nodes: saved, Edges: []domain.WorkflowEdge{}}
		r := newResolver(nodes, saved)
		res.TempIDs, res.Labels, res.IDMap = r.temp, r.label, r.merged()

		pending := make([]domain.WorkflowEdge, 0, len(edges))
		for i, e := range edges {
			source, okSource := r.resolve(e.SourceNodeID, e.SourceTempID)
			target, okTarget := r.resolve(e.TargetNodeID, e.TargetTempID)
			if !okSource || !okTarget {
				res.DroppedEdges++
				s.logger.WithFields(logrus.Fields{
					"workflow_id": workflowID,
					"edge_index":  i,
					"source":      firstNonEmpty(e.SourceNodeID, e.SourceTempID),
					"target":      firstNonEmpty(e.TargetNodeID, e.TargetTempID),
				}).Debug("graphsync: dropping edge with unresolved endpoint")
				continue
			}

			// Edge ids are always assigned by the store; a client id may
			// already belong to an edge of another workflow.
			pending = append(pending, domain.WorkflowEdge{
				WorkflowID:   workflowID,
				SourceNodeID: source,
				TargetNodeID: target,
				Condition:    e.Condition,
				DataMapping:  e.DataMapping,
			})
		}

		if len(pending) > 0 {
			savedEdges, err := tx.InsertEdges(ctx, pending)
			if err != nil {
				return fmt.Errorf("insert edges: %w", err)
			}
			res.Edges = savedEdges
		}

		result = res
		return nil
	})
	if err != nil {
		metrics.GraphSyncs.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.GraphSyncs.WithLabelValues("ok").Inc()
	metrics.DroppedEdges.Add(float64(result.DroppedEdges))
	s.logger.WithFields(logrus.Fields{
		"workflow_id":   workflowID,
		"nodes":         len(result.Nodes),
		"edges":         len(result.Edges),
		"dropped_edges": result.DroppedEdges,
	}).Info("graphsync: workflow graph replaced")

	return result, nil
}

// buildNodes validates the submitted nodes and turns them into rows. A
// canonical UUID in the id field is kept as the durable id; the first node to
// claim an id keeps it and any later duplicate gets a fresh one from the store.
func buildNodes(workflowID uuid.UUID, nodes []NodeInput) ([]domain.WorkflowNode, error) {
	rows := make([]domain.WorkflowNode, 0, len(nodes))
	claimed := make(map[uuid.UUID]struct{}, len(nodes))
	for i, n := range nodes {
		if !n.Type.Valid() {
			return nil, fmt.Errorf("%w: node %d has unknown type %q", domain.ErrInvalidInput, i, n.Type)
		}

		row := domain.WorkflowNode{
			WorkflowID:     workflowID,
			Type:           n.Type,
			Label:          n.Label,
			PositionX:      n.Position.X,
			PositionY:      n.Position.Y,
			Config:         n.Config,
			ServerID:       n.ServerID,
			CommandName:    n.CommandName,
			ExecutionOrder: n.ExecutionOrder,
		}
		if id, ok := canonicalUUID(n.ID); ok {
			if _, dup := claimed[id]; !dup {
				row.ID = id
				claimed[id] = struct{}{}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// canonicalUUID accepts only the hyphenated 36 character form.
func canonicalUUID(s string) (uuid.UUID, bool) {
	if len(s) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
