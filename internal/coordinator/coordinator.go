// Package coordinator applies the ingestion worker's stage events to the
// upload jobs they describe.
package coordinator

import (
	"context"
	"errors"

	"go-weave/internal/core/ports"
	"go-weave/internal/domain"
	"go-weave/internal/log"
	"go-weave/internal/service"

	"github.com/sirupsen/logrus"
)

type Coordinator struct {
	uploads  service.UploadService
	eventBus ports.EventBus
	logger   *logrus.Logger
}

func NewCoordinator(uploads service.UploadService, bus ports.EventBus) *Coordinator {
	return &Coordinator{
		uploads:  uploads,
		eventBus: bus,
		logger:   log.GetLogger(),
	}
}

// Start blocks until ctx is cancelled or the event stream closes. Call it
// from main.go as a goroutine.
func (c *Coordinator) Start(ctx context.Context) error {
	events, err := c.eventBus.SubscribeToStageEvents(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("coordinator started, listening for stage events")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("coordinator shutting down")
			return nil

		case event, ok := <-events:
			if !ok {
				c.logger.Warn("coordinator: stage event stream closed")
				return nil
			}
			c.handleStageChanged(ctx, event)
		}
	}
}

// handleStageChanged never stops the loop; a bad event is logged and skipped.
func (c *Coordinator) handleStageChanged(ctx context.Context, event domain.StageChangedEvent) {
	logger := c.logger.WithFields(logrus.Fields{
		"job_id": event.JobID,
		"stage":  event.Stage,
	})

	view, err := c.uploads.RecordStage(ctx, event)
	switch {
	case err == nil:
		logger.WithField("status", view.Status).Debug("coordinator: stage applied")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		logger.WithError(err).Warn("coordinator: skipping stage event")
	default:
		logger.WithError(err).Error("coordinator: failed to apply stage event")
	}
}
