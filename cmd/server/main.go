package main

import (
	"context"
	"log"
	"time"

	"github.com/aryankumar120/loan-eligibility-engine/internal/config"
	"github.com/aryankumar120/loan-eligibility-engine/internal/models"
	"github.com/aryankumar120/loan-eligibility-engine/internal/routes"
	"github.com/aryankumar120/loan-eligibility-engine/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	db := config.InitDB(cfg)

	db.AutoMigrate(
		&models.User{},
		&models.CSVUpload{},
	)

	store, err := storage.NewS3Store(context.Background(), cfg.AWSRegion)
	if err != nil {
		log.Fatal("failed to initialize object store: ", err)
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, routes.Deps{
		Store:      store,
		Issuer:     store,
		WebhookURL: cfg.N8NWebhookURL,
		Bucket:     cfg.CSVBucket,
	})

	r.Run(":" + cfg.Port)
}
