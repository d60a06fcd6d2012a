package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Upload statuses. A finalized upload (completed or failed) is never
// transitioned again; the row is the audit trail for one ingestion run.
const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

type CSVUpload struct {
	UploadID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"upload_id"`
	FileName         string         `json:"file_name"`
	SourceKey        string         `gorm:"index" json:"source_key"`
	Status           string         `gorm:"index" json:"status"`
	TotalRecords     *int           `json:"total_records"`
	ProcessedRecords *int           `json:"processed_records"`
	FailedRecords    *int           `json:"failed_records"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	RowErrors        datatypes.JSON `json:"row_errors,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	ProcessedAt      *time.Time     `json:"processed_at"`
}
