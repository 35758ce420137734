package service

import (
	"context"
	"fmt"
	"strings"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/graphsync"
	"go-weave/internal/log"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CreateWorkflowInput carries the fields accepted when a workflow is created.
type CreateWorkflowInput struct {
	Name        string
	Description *string
	IsTemplate  bool
	Category    *string
	Metadata    datatypes.JSON
}

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, ownerID string, in CreateWorkflowInput) (*domain.Workflow, error)
	GetWorkflow(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context, ownerID string, templatesOnly bool) ([]domain.Workflow, error)
	UpdateWorkflow(ctx context.Context, id uuid.UUID, ownerID string, patch domain.WorkflowPatch) (*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id uuid.UUID, ownerID string) error

	// SaveGraph replaces the workflow's nodes and edges with the submitted graph
	SaveGraph(ctx context.Context, id uuid.UUID, ownerID string, nodes []graphsync.NodeInput, edges []graphsync.EdgeInput) (*graphsync.Result, error)
}

// The Implementation
type workflowService struct {
	repo   ports.WorkflowRepository
	syncer *graphsync.Synchronizer
	logger *logrus.Logger
}

// Constructor
func NewWorkflowService(repo ports.WorkflowRepository, syncer *graphsync.Synchronizer) WorkflowService {
	return &workflowService{
		repo:   repo,
		syncer: syncer,
		logger: log.GetLogger(),
	}
}

func (s *workflowService) CreateWorkflow(ctx context.Context, ownerID string, in CreateWorkflowInput) (*domain.Workflow, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	workflow := domain.NewWorkflow(ownerID, name)
	workflow.Description = in.Description
	workflow.IsTemplate = in.IsTemplate
	workflow.Category = in.Category
	workflow.Metadata = in.Metadata

	if err := s.repo.Create(ctx, workflow); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"workflow_id": workflow.ID,
		"owner_id":    ownerID,
	}).Info("workflow created")
	return workflow, nil
}

func (s *workflowService) GetWorkflow(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error) {
	return s.repo.GetWithGraph(ctx, id, ownerID)
}

func (s *workflowService) ListWorkflows(ctx context.Context, ownerID string, templatesOnly bool) ([]domain.Workflow, error) {
	return s.repo.List(ctx, ownerID, templatesOnly)
}

func (s *workflowService) UpdateWorkflow(ctx context.Context, id uuid.UUID, ownerID string, patch domain.WorkflowPatch) (*domain.Workflow, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		patch.Name = &name
	}
	return s.repo.Update(ctx, id, ownerID, patch)
}

func (s *workflowService) DeleteWorkflow(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.WithField("workflow_id", id).Info("workflow deleted")
	return nil
}

func (s *workflowService) SaveGraph(ctx context.Context, id uuid.UUID, ownerID string, nodes []graphsync.NodeInput, edges []graphsync.EdgeInput) (*graphsync.Result, error) {
	// the synchronizer does not check ownership
	if _, err := s.repo.GetForOwner(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return s.syncer.Sync(ctx, id, nodes, edges)
}
