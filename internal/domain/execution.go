package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
	StatusSkipped   ExecutionStatus = "skipped"
)

func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled, StatusSkipped:
		return true
	}
	return false
}

// IsFinished reports whether no further transitions are expected.
func (s ExecutionStatus) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled || s == StatusSkipped
}

// WorkflowExecution is one run of a workflow. Rows are written by the
// execution engine; this service only reads them.
type WorkflowExecution struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	WorkflowID uuid.UUID       `gorm:"type:uuid;index;not null" json:"workflow_id"`
	OwnerID    string          `gorm:"type:varchar(255);index;not null" json:"owner_id"`
	Status     ExecutionStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	InputData  datatypes.JSON `gorm:"type:jsonb" json:"input_data,omitempty"`
	OutputData datatypes.JSON `gorm:"type:jsonb" json:"output_data,omitempty"`
	Error      *string        `gorm:"type:text" json:"error,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NodeExecution is one node's slice of a run.
type NodeExecution struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ExecutionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"execution_id"`
	NodeID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"node_id"`
	Status      ExecutionStatus `gorm:"type:varchar(20);index;default:'pending'" json:"status"`

	InputData  datatypes.JSON `gorm:"type:jsonb" json:"input_data,omitempty"`
	OutputData datatypes.JSON `gorm:"type:jsonb" json:"output_data,omitempty"`
	Error      *string        `gorm:"type:text" json:"error,omitempty"`

	StartedAt   *time.Time `gorm:"index" json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LatencyMS   *int64     `json:"latency_ms,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
