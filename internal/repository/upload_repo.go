package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aryankumar120/loan-eligibility-engine/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CSVUploadRepository struct {
	db *gorm.DB
}

func NewCSVUploadRepository(db *gorm.DB) *CSVUploadRepository {
	return &CSVUploadRepository{db: db}
}

// Create inserts a new upload in pending and returns its identity.
func (r *CSVUploadRepository) Create(ctx context.Context, fileName, sourceKey string) (uuid.UUID, error) {
	upload := models.CSVUpload{
		UploadID:  uuid.New(),
		FileName:  fileName,
		SourceKey: sourceKey,
		Status:    models.UploadStatusPending,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&upload).Error; err != nil {
		return uuid.Nil, err
	}
	return upload.UploadID, nil
}

// MarkProcessing flips a pending upload to processing. Best-effort progress
// signal; finalize does not depend on it having happened.
func (r *CSVUploadRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.CSVUpload{}).
		Where("upload_id = ?", id).
		Update("status", models.UploadStatusProcessing).
		Error
}

// Finalize moves an upload to its terminal status and records the counts,
// the truncated error summary and the per-row error detail in one update.
// Calling it twice with the same outcome just rewrites the same fields; no
// partial state is ever visible.
func (r *CSVUploadRepository) Finalize(
	ctx context.Context,
	id uuid.UUID,
	status string,
	total, processed, failed int,
	errorMessage string,
	rowErrors []string,
) error {
	fields := map[string]interface{}{
		"status":            status,
		"total_records":     total,
		"processed_records": processed,
		"failed_records":    failed,
		"error_message":     errorMessage,
		"processed_at":      time.Now(),
	}
	if len(rowErrors) > 0 {
		detail, err := json.Marshal(rowErrors)
		if err == nil {
			fields["row_errors"] = datatypes.JSON(detail)
		}
	}

	return r.db.WithContext(ctx).Model(&models.CSVUpload{}).
		Where("upload_id = ?", id).
		Updates(fields).
		Error
}

// FinalizeFailure marks an upload failed after a fatal fetch or parse error.
// Counts stay NULL: processing never got far enough to produce them.
func (r *CSVUploadRepository) FinalizeFailure(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return r.db.WithContext(ctx).Model(&models.CSVUpload{}).
		Where("upload_id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.UploadStatusFailed,
			"error_message": errorMessage,
			"processed_at":  time.Now(),
		}).
		Error
}

// GetByID fetches a single upload row.
func (r *CSVUploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CSVUpload, error) {
	var upload models.CSVUpload
	if err := r.db.WithContext(ctx).First(&upload, "upload_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// List returns recent uploads, newest first.
func (r *CSVUploadRepository) List(ctx context.Context, limit int) ([]models.CSVUpload, error) {
	var uploads []models.CSVUpload
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&uploads).Error
	return uploads, err
}
