package ports

import (
	"context"
	"go-weave/internal/domain"

	"github.com/google/uuid"
)

// WorkflowRepository represents the workflow record operations.
// Every read and write is scoped to the owner; a workflow owned by someone
// else is reported as domain.ErrNotFound.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *domain.Workflow) error

	// GetForOwner loads the workflow row only
	GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error)

	// GetWithGraph loads the workflow with its nodes and edges
	GetWithGraph(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error)

	List(ctx context.Context, ownerID string, templatesOnly bool) ([]domain.Workflow, error)

	// Update applies a partial update (name, description, metadata)
	Update(ctx context.Context, id uuid.UUID, ownerID string, patch domain.WorkflowPatch) (*domain.Workflow, error)

	// Delete removes the workflow; nodes, edges and executions go with it
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// GraphStore is the node/edge side of the store, used by the synchronizer.
type GraphStore interface {
	// Transaction runs fn against a store bound to one transaction.
	// Returning an error from fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx GraphStore) error) error

	DeleteEdges(ctx context.Context, workflowID uuid.UUID) error
	DeleteNodes(ctx context.Context, workflowID uuid.UUID) error

	// InsertNodes batch-inserts and returns the rows with their durable ids
	InsertNodes(ctx context.Context, nodes []domain.WorkflowNode) ([]domain.WorkflowNode, error)
	InsertEdges(ctx context.Context, edges []domain.WorkflowEdge) ([]domain.WorkflowEdge, error)
}

// ExecutionRepository is read-only: runs are written by the execution engine.
type ExecutionRepository interface {
	GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.WorkflowExecution, error)
	ListForWorkflow(ctx context.Context, workflowID uuid.UUID, ownerID string) ([]domain.WorkflowExecution, error)

	// ListNodeExecutions returns the run's node rows ordered by start time
	ListNodeExecutions(ctx context.Context, executionID uuid.UUID) ([]domain.NodeExecution, error)
}

// UploadJobRepository represents the ingestion job operations.
type UploadJobRepository interface {
	Create(ctx context.Context, job *domain.UploadJob) error
	GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.UploadJob, error)
	List(ctx context.Context, ownerID string) ([]domain.UploadJob, error)

	// Modify locks the job row, hands it to fn and saves whatever fn left in it
	Modify(ctx context.Context, id uuid.UUID, fn func(job *domain.UploadJob) error) (*domain.UploadJob, error)
}

// IdentityProvider yields the caller of the current request.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*domain.Identity, bool)
	SessionCredential(ctx context.Context) (string, bool)
}

// ExecutionEngine is the request/response boundary to the external runner.
type ExecutionEngine interface {
	Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error)
}

// IngestQueue hands upload job ids to the ingestion worker.
type IngestQueue interface {
	Push(ctx context.Context, jobID string) error

	// Depth is the number of jobs still waiting
	Depth(ctx context.Context) (int64, error)
}

// EventBus represents the Pub/Sub operations
type EventBus interface {
	// Publish "run accepted by the engine"
	PublishExecutionDispatched(ctx context.Context, event domain.ExecutionDispatchedEvent) error

	// Subscribe to stage changes (used by the Coordinator)
	SubscribeToStageEvents(ctx context.Context) (<-chan domain.StageChangedEvent, error)
}
