package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionDispatchedEvent is published to Redis Pub/Sub after the engine accepts a run
type ExecutionDispatchedEvent struct {
	ExecutionID string    `json:"execution_id"`
	WorkflowID  uuid.UUID `json:"workflow_id"`
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

// StageChangedEvent is published by the ingestion worker whenever an upload
// job enters a new stage. Optional fields are only set by the stages that
// produce them (e.g. content_length on "extracted").
type StageChangedEvent struct {
	JobID          uuid.UUID      `json:"job_id"`
	Stage          string         `json:"stage"`
	At             time.Time      `json:"at"`
	Message        *string        `json:"message,omitempty"`
	Error          *string        `json:"error,omitempty"`
	Result         *string        `json:"result,omitempty"`
	ContentLength  *int64         `json:"content_length,omitempty"`
	VisionSummary  *string        `json:"vision_summary,omitempty"`
	VisionProvider *string        `json:"vision_provider,omitempty"`
	VisionMetadata map[string]any `json:"vision_metadata,omitempty"`
}
