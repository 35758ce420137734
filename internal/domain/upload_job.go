package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobUploading  JobStatus = "uploading"
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// UploadJob belongs to the ingestion pipeline, not to graph execution.
// Stage state is packed into Metadata; see package stage.
type UploadJob struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	OwnerID  string    `gorm:"type:varchar(255);index;not null" json:"owner_id"`
	FileName string    `gorm:"type:varchar(512);not null" json:"file_name"`
	Status   JobStatus `gorm:"type:varchar(20);index;default:'uploading'" json:"status"`

	Message *string `gorm:"type:text" json:"message,omitempty"`
	Error   *string `gorm:"type:text" json:"error,omitempty"`
	Result  *string `gorm:"type:text" json:"result,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUploadJob(ownerID, fileName string) *UploadJob {
	return &UploadJob{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		FileName:  fileName,
		Status:    JobUploading,
		CreatedAt: time.Now(),
	}
}
