package repository

import (
	"context"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type executionRepository struct {
	db *gorm.DB
}

// NewExecutionRepository creates a new instance of ExecutionRepository
func NewExecutionRepository(db *gorm.DB) ports.ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.WorkflowExecution, error) {
	var execution domain.WorkflowExecution
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&execution).Error
	if err != nil {
		return nil, translate(err, "get execution")
	}
	return &execution, nil
}

// ListForWorkflow returns the newest run first.
func (r *executionRepository) ListForWorkflow(ctx context.Context, workflowID uuid.UUID, ownerID string) ([]domain.WorkflowExecution, error) {
	executions := []domain.WorkflowExecution{}
	err := r.db.WithContext(ctx).
		Where("workflow_id = ? AND owner_id = ?", workflowID, ownerID).
		Order("created_at DESC").
		Find(&executions).Error
	if err != nil {
		return nil, translate(err, "list executions")
	}
	return executions, nil
}

func (r *executionRepository) ListNodeExecutions(ctx context.Context, executionID uuid.UUID) ([]domain.NodeExecution, error) {
	rows := []domain.NodeExecution{}
	err := r.db.WithContext(ctx).
		Where("execution_id = ?", executionID).
		Order("started_at ASC NULLS LAST").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "list node executions")
	}
	return rows, nil
}
