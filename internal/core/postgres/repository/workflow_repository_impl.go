package repository

import (
	"context"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

// Create stores the workflow row only; the graph is written by the synchronizer.
func (r *workflowRepository) Create(ctx context.Context, workflow *domain.Workflow) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(workflow).Error
	return translate(err, "create workflow")
}

func (r *workflowRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&workflow).Error
	if err != nil {
		return nil, translate(err, "get workflow")
	}
	return &workflow, nil
}

func (r *workflowRepository) GetWithGraph(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Workflow, error) {
	var workflow domain.Workflow
	err := r.db.WithContext(ctx).
		Preload("Nodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("execution_order ASC NULLS LAST").Order("created_at ASC").Order("id ASC")
		}).
		Preload("Edges", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&workflow).Error
	if err != nil {
		return nil, translate(err, "get workflow graph")
	}

	// detail view always carries both lists, even when empty
	if workflow.Nodes == nil {
		workflow.Nodes = []domain.WorkflowNode{}
	}
	if workflow.Edges == nil {
		workflow.Edges = []domain.WorkflowEdge{}
	}
	return &workflow, nil
}

func (r *workflowRepository) List(ctx context.Context, ownerID string, templatesOnly bool) ([]domain.Workflow, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if templatesOnly {
		query = query.Where("is_template = ?", true)
	}

	workflows := []domain.Workflow{}
	if err := query.Order("updated_at DESC").Find(&workflows).Error; err != nil {
		return nil, translate(err, "list workflows")
	}
	return workflows, nil
}

func (r *workflowRepository) Update(ctx context.Context, id uuid.UUID, ownerID string, patch domain.WorkflowPatch) (*domain.Workflow, error) {
	if patch.Empty() {
		return r.GetForOwner(ctx, id, ownerID)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Metadata != nil {
		updates["metadata"] = patch.Metadata
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Workflow{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error, "update workflow")
	}
	if result.RowsAffected == 0 {
		return nil, errors.Wrap(domain.ErrNotFound, "update workflow")
	}

	return r.GetForOwner(ctx, id, ownerID)
}

// Delete relies on ON DELETE CASCADE for nodes, edges and executions.
func (r *workflowRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.Workflow{})
	if result.Error != nil {
		return translate(result.Error, "delete workflow")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(domain.ErrNotFound, "delete workflow")
	}
	return nil
}
