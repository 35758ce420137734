package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Workflow struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerID     string         `gorm:"type:varchar(255);index;not null" json:"owner_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	IsTemplate  bool           `gorm:"default:false" json:"is_template"`
	Category    *string        `gorm:"type:varchar(100)" json:"category,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relationships
	// Note: only loaded on the detail view, never on list
	Nodes []WorkflowNode `gorm:"foreignKey:WorkflowID" json:"nodes,omitempty"`
	Edges []WorkflowEdge `gorm:"foreignKey:WorkflowID" json:"edges,omitempty"`

	// Audit
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- FACTORY ---
func NewWorkflow(ownerID, name string) *Workflow {
	return &Workflow{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WorkflowPatch carries the only fields a partial update may touch.
type WorkflowPatch struct {
	Name        *string
	Description *string
	Metadata    datatypes.JSON
}

// Empty reports whether the patch changes nothing.
func (p WorkflowPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Metadata == nil
}
