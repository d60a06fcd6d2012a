package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/aryankumar120/loan-eligibility-engine/internal/repository"
	service "github.com/aryankumar120/loan-eligibility-engine/internal/services/ingestion"
	"github.com/aryankumar120/loan-eligibility-engine/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadURLIssuer issues presigned upload authorizations. Satisfied by
// storage.S3Store.
type UploadURLIssuer interface {
	PresignUpload(ctx context.Context, bucket, filename, contentType string) (*storage.UploadURL, error)
}

// TriggerIngestion consumes the object-store trigger event and runs one
// ingestion synchronously, so the at-least-once event bridge sees fatal
// failures and can redeliver.
func (h *UploadHandler) TriggerIngestion(c *gin.Context) {
	var payload struct {
		Bucket string `json:"bucket"`
		Key    string `json:"key"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Bucket == "" || payload.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and key are required"})
		return
	}

	result, err := h.service.Process(c.Request.Context(), payload.Bucket, payload.Key)
	if err != nil {
		var fetchErr *service.FetchError
		var parseErr *service.ParseError
		switch {
		case errors.As(err, &fetchErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		case errors.As(err, &parseErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "CSV processed successfully",
		"result":  result,
	})
}

// GetUploadStatus returns the lifecycle row for one upload.
func (h *UploadHandler) GetUploadStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("uploadId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload ID"})
		return
	}

	upload, err := h.uploads.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}

	c.JSON(http.StatusOK, upload)
}

// ListUploads returns recent uploads, newest first.
func (h *UploadHandler) ListUploads(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	uploads, err := h.uploads.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": uploads})
}

// GetUploadURL issues a presigned upload authorization for the UI. Only CSV
// files are accepted; content is not inspected here.
func (h *UploadHandler) GetUploadURL(c *gin.Context) {
	filename := c.DefaultQuery("filename", "upload.csv")
	contentType := c.DefaultQuery("content_type", "text/csv")

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only CSV files are allowed"})
		return
	}

	uploadURL, err := h.issuer.PresignUpload(c.Request.Context(), h.bucket, filename, contentType)
	if err != nil {
		log.Printf("failed to presign upload for %s: %v", filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, uploadURL)
}

// ListRecentUsers returns the most recently ingested users for the matching
// workflow's consumption.
func (h *UploadHandler) ListRecentUsers(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	users, err := h.users.RecentUsers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": users})
}

type UploadHandler struct {
	service *service.IngestionService
	uploads *repository.CSVUploadRepository
	users   *repository.UserRepository
	issuer  UploadURLIssuer
	bucket  string
}

func NewUploadHandler(
	s *service.IngestionService,
	uploads *repository.CSVUploadRepository,
	users *repository.UserRepository,
	issuer UploadURLIssuer,
	bucket string,
) *UploadHandler {
	return &UploadHandler{
		service: s,
		uploads: uploads,
		users:   users,
		issuer:  issuer,
		bucket:  bucket,
	}
}
