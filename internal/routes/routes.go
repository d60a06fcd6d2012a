package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "github.com/aryankumar120/loan-eligibility-engine/internal/handlers"
	"github.com/aryankumar120/loan-eligibility-engine/internal/notifier"
	"github.com/aryankumar120/loan-eligibility-engine/internal/repository"
	service "github.com/aryankumar120/loan-eligibility-engine/internal/services/ingestion"
	"github.com/aryankumar120/loan-eligibility-engine/internal/storage"
)

type Deps struct {
	Store      storage.ObjectStore
	Issuer     handler.UploadURLIssuer
	WebhookURL string
	Bucket     string
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	userRepo := repository.NewUserRepository(db)
	uploadRepo := repository.NewCSVUploadRepository(db)

	webhook := notifier.NewWebhookNotifier(deps.WebhookURL)
	ingestionService := service.NewIngestionService(deps.Store, userRepo, uploadRepo, webhook)

	uploadHandler := handler.NewUploadHandler(ingestionService, uploadRepo, userRepo, deps.Issuer, deps.Bucket)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Upload lifecycle routes
	uploads := api.Group("/uploads")
	uploads.POST("/events", uploadHandler.TriggerIngestion)
	uploads.GET("/url", uploadHandler.GetUploadURL)
	uploads.GET("/:uploadId", uploadHandler.GetUploadStatus)
	uploads.GET("", uploadHandler.ListUploads)

	// User routes
	users := api.Group("/users")
	{
		users.GET("/recent", uploadHandler.ListRecentUsers)
	}
}
