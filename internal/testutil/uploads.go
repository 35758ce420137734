package testutil

import (
	"context"
	"sync"
	"time"

	"go-weave/internal/domain"

	"github.com/google/uuid"
)

// UploadJobRepository is an in-memory ports.UploadJobRepository.
type UploadJobRepository struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]domain.UploadJob
}

func NewUploadJobRepository() *UploadJobRepository {
	return &UploadJobRepository{jobs: make(map[uuid.UUID]domain.UploadJob)}
}

func (r *UploadJobRepository) Create(ctx context.Context, job *domain.UploadJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return domain.ErrDuplicate
	}
	job.UpdatedAt = time.Now()
	r.jobs[job.ID] = *job
	return nil
}

func (r *UploadJobRepository) GetForOwner(ctx context.Context, id uuid.UUID, ownerID string) (*domain.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

func (r *UploadJobRepository) List(ctx context.Context, ownerID string) ([]domain.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.UploadJob{}
	for _, job := range r.jobs {
		if job.OwnerID == ownerID {
			out = append(out, job)
		}
	}
	return out, nil
}

// Modify holds the repository lock for the whole callback, which stands in
// for the row lock of the SQL implementation.
func (r *UploadJobRepository) Modify(ctx context.Context, id uuid.UUID, fn func(job *domain.UploadJob) error) (*domain.UploadJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := fn(&job); err != nil {
		return nil, err
	}
	job.UpdatedAt = time.Now()
	r.jobs[id] = job
	return &job, nil
}
