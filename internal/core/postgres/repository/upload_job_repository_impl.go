package repository

import (
	"context"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type uploadJobRepository struct {
	db *gorm.DB
}

// NewUploadJobRepository creates a new instance of UploadJobRepository
func NewUploadJobRepository(db *gorm.DB) ports.UploadJobRepository {
	return &uploadJobRepository{db: db}
}

func (r *uploadJobRepository) Create(ctx context.Context, job *domain.UploadJob) error {
	return translate(r.db.WithContext(ctx).Create(job).Error, "create upload job")
}

func (r *uploadJobRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.UploadJob, error) {
	var job domain.UploadJob
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&job).Error
	if err != nil {
		return nil, translate(err, "get upload job")
	}
	return &job, nil
}

func (r *uploadJobRepository) List(ctx context.Context, ownerID string) ([]domain.UploadJob, error) {
	jobs := []domain.UploadJob{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, translate(err, "list upload jobs")
	}
	return jobs, nil
}

// Modify serializes concurrent stage updates on one job with SELECT ... FOR UPDATE.
func (r *uploadJobRepository) Modify(ctx context.Context, id uuid.UUID, fn func(job *domain.UploadJob) error) (*domain.UploadJob, error) {
	var job domain.UploadJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&job).Error; err != nil {
			return err
		}
		if err := fn(&job); err != nil {
			return err
		}
		return tx.Save(&job).Error
	})
	if err != nil {
		return nil, translate(err, "modify upload job")
	}
	return &job, nil
}
