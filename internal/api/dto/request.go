package dto

import (
	"go-weave/internal/domain"
	"go-weave/internal/graphsync"

	"gorm.io/datatypes"
)

type CreateWorkflowRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description *string        `json:"description"`
	IsTemplate  bool           `json:"is_template"`
	Category    *string        `json:"category"`
	Metadata    datatypes.JSON `json:"metadata"`
}

// UpdateWorkflowRequest is a partial update; absent fields are left alone.
type UpdateWorkflowRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Metadata    datatypes.JSON `json:"metadata"`
}

func (r UpdateWorkflowRequest) Patch() domain.WorkflowPatch {
	return domain.WorkflowPatch{
		Name:        r.Name,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

type PositionDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NodeDTO struct {
	ID             string          `json:"id"`
	TempID         string          `json:"temp_id"`
	Type           domain.NodeType `json:"node_type"`
	Label          string          `json:"label"`
	Position       PositionDTO     `json:"position"`
	Config         datatypes.JSON  `json:"config"`
	ServerID       *string         `json:"server_id"`
	CommandName    *string         `json:"command_name"`
	ExecutionOrder *int            `json:"execution_order"`
}

type EdgeDTO struct {
	SourceNodeID string         `json:"source_node_id"`
	TargetNodeID string         `json:"target_node_id"`
	SourceTempID string         `json:"source_temp_id"`
	TargetTempID string         `json:"target_temp_id"`
	Condition    *string        `json:"condition"`
	DataMapping  datatypes.JSON `json:"data_mapping"`
}

// SaveGraphRequest is the complete graph; whatever is not in it is deleted.
type SaveGraphRequest struct {
	Nodes []NodeDTO `json:"nodes"`
	Edges []EdgeDTO `json:"edges"`
}

func (r SaveGraphRequest) Inputs() ([]graphsync.NodeInput, []graphsync.EdgeInput) {
	nodes := make([]graphsync.NodeInput, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		nodes = append(nodes, graphsync.NodeInput{
			ID:             n.ID,
			TempID:         n.TempID,
			Type:           n.Type,
			Label:          n.Label,
			Position:       graphsync.Position{X: n.Position.X, Y: n.Position.Y},
			Config:         n.Config,
			ServerID:       n.ServerID,
			CommandName:    n.CommandName,
			ExecutionOrder: n.ExecutionOrder,
		})
	}

	edges := make([]graphsync.EdgeInput, 0, len(r.Edges))
	for _, e := range r.Edges {
		edges = append(edges, graphsync.EdgeInput{
			SourceNodeID: e.SourceNodeID,
			TargetNodeID: e.TargetNodeID,
			SourceTempID: e.SourceTempID,
			TargetTempID: e.TargetTempID,
			Condition:    e.Condition,
			DataMapping:  e.DataMapping,
		})
	}
	return nodes, edges
}

type ExecuteWorkflowRequest struct {
	InputData  map[string]any `json:"input_data"`
	Parameters map[string]any `json:"parameters"`
}

type RegisterUploadRequest struct {
	FileName string `json:"file_name" binding:"required"`
}
