package repository

import (
	"context"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type graphStore struct {
	db *gorm.DB
}

// NewGraphStore creates a new instance of GraphStore
func NewGraphStore(db *gorm.DB) ports.GraphStore {
	return &graphStore{db: db}
}

func (s *graphStore) Transaction(ctx context.Context, fn func(tx ports.GraphStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&graphStore{db: tx})
	})
}

func (s *graphStore) DeleteEdges(ctx context.Context, workflowID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Delete(&domain.WorkflowEdge{}).Error
	return translate(err, "delete edges")
}

func (s *graphStore) DeleteNodes(ctx context.Context, workflowID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Delete(&domain.WorkflowNode{}).Error
	return translate(err, "delete nodes")
}

// InsertNodes writes the batch in one statement; ids missing on input are
// assigned by the BeforeCreate hook and returned in place.
func (s *graphStore) InsertNodes(ctx context.Context, nodes []domain.WorkflowNode) ([]domain.WorkflowNode, error) {
	if len(nodes) == 0 {
		return []domain.WorkflowNode{}, nil
	}
	if err := s.db.WithContext(ctx).Create(&nodes).Error; err != nil {
		return nil, translate(err, "insert nodes")
	}
	return nodes, nil
}

func (s *graphStore) InsertEdges(ctx context.Context, edges []domain.WorkflowEdge) ([]domain.WorkflowEdge, error) {
	if len(edges) == 0 {
		return []domain.WorkflowEdge{}, nil
	}
	if err := s.db.WithContext(ctx).Create(&edges).Error; err != nil {
		return nil, translate(err, "insert edges")
	}
	return edges, nil
}
