package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/aryankumar120/loan-eligibility-engine/internal/models"
	"github.com/aryankumar120/loan-eligibility-engine/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Expose DB if needed
func (r *UserRepository) DB() *gorm.DB {
	return r.db
}

// UpsertBatch applies each validated record independently: one failed insert
// never rolls back or aborts the rest of the batch. Conflicts on email
// overwrite the mutable fields and refresh updated_at, so re-processing the
// same file converges instead of duplicating rows. created_at is left alone
// on conflict.
func (r *UserRepository) UpsertBatch(ctx context.Context, records []validation.Record) (int, int, []string) {
	successCount := 0
	failedCount := 0
	var errs []string

	for _, rec := range records {
		user := models.User{
			Email:            rec.Email,
			MonthlyIncome:    rec.MonthlyIncome,
			CreditScore:      rec.CreditScore,
			EmploymentStatus: rec.EmploymentStatus,
			Age:              rec.Age,
		}

		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"monthly_income", "credit_score", "employment_status", "age", "updated_at",
			}),
		}).Create(&user).Error

		if err != nil {
			failedCount++
			errs = append(errs, fmt.Sprintf("failed to upsert user %s: %v", rec.Email, err))
			log.Printf("error upserting user %s: %v", rec.Email, err)
			continue
		}
		successCount++
	}

	return successCount, failedCount, errs
}

// FindByEmail fetches a single user by its natural key.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RecentUsers returns the most recently ingested users, newest first.
func (r *UserRepository) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&users).Error
	return users, err
}
