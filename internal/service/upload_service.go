package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/log"
	"go-weave/internal/metrics"
	"go-weave/internal/stage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// UploadView is an upload job with its stage fields decoded from metadata.
type UploadView struct {
	*domain.UploadJob
	stage.Snapshot
	stage.VisionAnalysis
}

type UploadService interface {
	// Register records a new upload and queues it for ingestion
	Register(ctx context.Context, ownerID, fileName string) (*UploadView, error)
	Get(ctx context.Context, id uuid.UUID, ownerID string) (*UploadView, error)
	List(ctx context.Context, ownerID string) ([]UploadView, error)

	// RecordStage applies a stage change reported by the ingestion worker
	RecordStage(ctx context.Context, event domain.StageChangedEvent) (*UploadView, error)
}

type uploadService struct {
	repo   ports.UploadJobRepository
	queue  ports.IngestQueue
	logger *logrus.Logger
	now    func() time.Time
}

func NewUploadService(repo ports.UploadJobRepository, queue ports.IngestQueue) UploadService {
	return &uploadService{
		repo:   repo,
		queue:  queue,
		logger: log.GetLogger(),
		now:    time.Now,
	}
}

func (s *uploadService) Register(ctx context.Context, ownerID, fileName string) (*UploadView, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file_name is required", domain.ErrInvalidInput)
	}

	job := domain.NewUploadJob(ownerID, fileName)
	meta, err := stage.Apply(nil, stage.Registered, s.now())
	if err != nil {
		return nil, err
	}
	if job.Metadata, err = encodeMetadata(meta); err != nil {
		return nil, err
	}
	job.Status = stage.StatusFor(stage.Registered)

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}

	logger := s.logger.WithFields(logrus.Fields{"job_id": job.ID, "owner_id": ownerID})
	if err := s.queue.Push(ctx, job.ID.String()); err != nil {
		logger.WithError(err).Error("failed to queue upload job")
		s.markFailed(ctx, job.ID, "failed to queue job for ingestion")
		return nil, err
	}

	logger.Info("upload job queued")
	return newUploadView(job), nil
}

func (s *uploadService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*UploadView, error) {
	job, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return newUploadView(job), nil
}

func (s *uploadService) List(ctx context.Context, ownerID string) ([]UploadView, error) {
	jobs, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]UploadView, 0, len(jobs))
	for i := range jobs {
		views = append(views, *newUploadView(&jobs[i]))
	}
	return views, nil
}

func (s *uploadService) RecordStage(ctx context.Context, event domain.StageChangedEvent) (*UploadView, error) {
	st, err := stage.Parse(event.Stage)
	if err != nil {
		metrics.StageEvents.WithLabelValues("unknown", "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	at := event.At
	if at.IsZero() {
		at = s.now()
	}

	job, err := s.repo.Modify(ctx, event.JobID, func(job *domain.UploadJob) error {
		meta, err := stage.Apply(decodeMetadata(job.Metadata), st, at)
		if err != nil {
			return err
		}
		meta = stage.Annotate(meta, event.ContentLength, stage.VisionAnalysis{
			Summary:  event.VisionSummary,
			Provider: event.VisionProvider,
			Metadata: event.VisionMetadata,
		})
		if job.Metadata, err = encodeMetadata(meta); err != nil {
			return err
		}

		job.Status = stage.StatusFor(st)
		if event.Message != nil {
			job.Message = event.Message
		}
		if event.Error != nil {
			job.Error = event.Error
		}
		if event.Result != nil {
			job.Result = event.Result
		}
		return nil
	})
	if err != nil {
		metrics.StageEvents.WithLabelValues(string(st), "error").Inc()
		return nil, err
	}

	metrics.StageEvents.WithLabelValues(string(st), "ok").Inc()
	s.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"stage":  st,
		"status": job.Status,
	}).Debug("upload job stage recorded")
	return newUploadView(job), nil
}

func (s *uploadService) markFailed(ctx context.Context, id uuid.UUID, reason string) {
	_, err := s.RecordStage(ctx, domain.StageChangedEvent{
		JobID: id,
		Stage: string(stage.Failed),
		At:    s.now(),
		Error: &reason,
	})
	if err != nil {
		s.logger.WithError(err).WithField("job_id", id).Error("failed to mark upload job as failed")
	}
}

func newUploadView(job *domain.UploadJob) *UploadView {
	meta := decodeMetadata(job.Metadata)
	return &UploadView{
		UploadJob:      job,
		Snapshot:       stage.Derive(meta),
		VisionAnalysis: stage.Vision(meta),
	}
}

// decodeMetadata yields nil for an empty or non-object bag.
func decodeMetadata(raw datatypes.JSON) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return meta
}

func encodeMetadata(meta map[string]any) (datatypes.JSON, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode job metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}
