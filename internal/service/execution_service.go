package service

import (
	"context"
	"fmt"
	"time"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/log"
	"go-weave/internal/tracker"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ExecutionService interface {
	// Execute hands the run to the engine and returns as soon as it is accepted
	Execute(ctx context.Context, workflowID uuid.UUID, ownerID string, inputData, parameters map[string]any) (*domain.DispatchResult, error)
	Progress(ctx context.Context, executionID uuid.UUID, ownerID string) (*tracker.Progress, error)
	ListExecutions(ctx context.Context, workflowID uuid.UUID, ownerID string) ([]domain.WorkflowExecution, error)
}

type executionService struct {
	workflows  ports.WorkflowRepository
	executions ports.ExecutionRepository
	engine     ports.ExecutionEngine
	bus        ports.EventBus
	tracker    *tracker.Tracker
	logger     *logrus.Logger
}

// NewExecutionService accepts a nil engine; Execute then reports
// domain.ErrNotConfigured.
func NewExecutionService(
	workflows ports.WorkflowRepository,
	executions ports.ExecutionRepository,
	engine ports.ExecutionEngine,
	bus ports.EventBus,
) ExecutionService {
	return &executionService{
		workflows:  workflows,
		executions: executions,
		engine:     engine,
		bus:        bus,
		tracker:    tracker.NewTracker(executions),
		logger:     log.GetLogger(),
	}
}

func (s *executionService) Execute(ctx context.Context, workflowID uuid.UUID, ownerID string, inputData, parameters map[string]any) (*domain.DispatchResult, error) {
	if s.engine == nil {
		return nil, fmt.Errorf("%w: no execution engine configured", domain.ErrNotConfigured)
	}
	if _, err := s.workflows.GetForOwner(ctx, workflowID, ownerID); err != nil {
		return nil, err
	}

	result, err := s.engine.Dispatch(ctx, domain.DispatchRequest{
		WorkflowID: workflowID,
		InputData:  inputData,
		Parameters: parameters,
	})
	if err != nil {
		return nil, err
	}

	logger := s.logger.WithFields(logrus.Fields{
		"workflow_id":  workflowID,
		"execution_id": result.ExecutionID,
	})
	logger.Info("execution dispatched")

	if s.bus != nil {
		event := domain.ExecutionDispatchedEvent{
			ExecutionID: result.ExecutionID,
			WorkflowID:  workflowID,
			OwnerID:     ownerID,
			Status:      result.Status,
			At:          time.Now().UTC(),
		}
		// the run is already accepted; a lost notification must not fail it
		if err := s.bus.PublishExecutionDispatched(ctx, event); err != nil {
			logger.WithError(err).Warn("failed to publish dispatch event")
		}
	}

	return result, nil
}

func (s *executionService) Progress(ctx context.Context, executionID uuid.UUID, ownerID string) (*tracker.Progress, error) {
	return s.tracker.GetProgress(ctx, executionID, ownerID)
}

func (s *executionService) ListExecutions(ctx context.Context, workflowID uuid.UUID, ownerID string) ([]domain.WorkflowExecution, error) {
	if _, err := s.workflows.GetForOwner(ctx, workflowID, ownerID); err != nil {
		return nil, err
	}
	return s.executions.ListForWorkflow(ctx, workflowID, ownerID)
}
