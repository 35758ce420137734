package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NodeType string

const (
	NodeAgent     NodeType = "agent"
	NodeTool      NodeType = "tool"
	NodeData      NodeType = "data"
	NodeCondition NodeType = "condition"
	NodeMerge     NodeType = "merge"
	NodeStart     NodeType = "start"
	NodeEnd       NodeType = "end"
)

func (t NodeType) Valid() bool {
	switch t {
	case NodeAgent, NodeTool, NodeData, NodeCondition, NodeMerge, NodeStart, NodeEnd:
		return true
	}
	return false
}

type WorkflowNode struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	WorkflowID uuid.UUID `gorm:"type:uuid;index;not null" json:"workflow_id"`
	Type       NodeType  `gorm:"type:varchar(20);not null" json:"node_type"`
	Label      string    `gorm:"type:varchar(255);not null" json:"label"`
	PositionX  float64   `gorm:"default:0" json:"position_x"`
	PositionY  float64   `gorm:"default:0" json:"position_y"`

	Config datatypes.JSON `gorm:"type:jsonb" json:"config,omitempty"`

	// External capability linkage (server + command)
	ServerID    *string `gorm:"type:varchar(255)" json:"server_id,omitempty"`
	CommandName *string `gorm:"type:varchar(255)" json:"command_name,omitempty"`

	ExecutionOrder *int `json:"execution_order,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate lets the store assign a durable id when the caller did not keep one.
func (n *WorkflowNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
