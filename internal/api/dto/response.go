package dto

import (
	"go-weave/internal/domain"
	"go-weave/internal/graphsync"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SaveGraphResponse struct {
	IDMap        map[string]uuid.UUID  `json:"id_map"`
	Nodes        []domain.WorkflowNode `json:"nodes"`
	Edges        []domain.WorkflowEdge `json:"edges"`
	DroppedEdges int                   `json:"dropped_edges"`
}

func NewSaveGraphResponse(res *graphsync.Result) SaveGraphResponse {
	return SaveGraphResponse{
		IDMap:        res.IDMap,
		Nodes:        res.Nodes,
		Edges:        res.Edges,
		DroppedEdges: res.DroppedEdges,
	}
}

type HealthResponse struct {
	Status           string `json:"status"`
	IngestQueueDepth *int64 `json:"ingest_queue_depth,omitempty"`
	Error            string `json:"error,omitempty"`
}
