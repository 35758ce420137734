package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkflowEdge struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	WorkflowID   uuid.UUID `gorm:"type:uuid;index;not null" json:"workflow_id"`
	SourceNodeID uuid.UUID `gorm:"type:uuid;index;not null" json:"source_node_id"`
	TargetNodeID uuid.UUID `gorm:"type:uuid;index;not null" json:"target_node_id"`

	Condition   *string        `gorm:"type:text" json:"condition,omitempty"`
	DataMapping datatypes.JSON `gorm:"type:jsonb" json:"data_mapping,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (e *WorkflowEdge) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
