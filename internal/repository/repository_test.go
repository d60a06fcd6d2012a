package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aryankumar120/loan-eligibility-engine/internal/models"
	"github.com/aryankumar120/loan-eligibility-engine/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CSVUpload{}))
	return db
}

func record(email string, income float64, score, age int) validation.Record {
	return validation.Record{
		Email:            email,
		MonthlyIncome:    income,
		CreditScore:      score,
		EmploymentStatus: "employed",
		Age:              age,
	}
}

func TestUpsertBatch_InsertsNewRecords(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	success, failed, errs := repo.UpsertBatch(ctx, []validation.Record{
		record("a@example.com", 3000, 700, 30),
		record("b@example.com", 4000, 650, 45),
	})

	assert.Equal(t, 2, success)
	assert.Equal(t, 0, failed)
	assert.Empty(t, errs)

	user, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, user.MonthlyIncome)
	assert.Equal(t, 700, user.CreditScore)
}

func TestUpsertBatch_ConflictOverwritesMutableFields(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	success, failed, _ := repo.UpsertBatch(ctx, []validation.Record{
		record("a@example.com", 3000, 700, 30),
	})
	require.Equal(t, 1, success)
	require.Equal(t, 0, failed)

	first, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	success, failed, _ = repo.UpsertBatch(ctx, []validation.Record{
		record("a@example.com", 5500, 810, 31),
	})
	assert.Equal(t, 1, success)
	assert.Equal(t, 0, failed)

	second, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID, "identity is preserved across re-ingestion")
	assert.Equal(t, 5500.0, second.MonthlyIncome)
	assert.Equal(t, 810, second.CreditScore)
	assert.Equal(t, 31, second.Age)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix(), "created_at is preserved")

	var count int64
	require.NoError(t, repo.DB().Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no duplicate rows for the same email")
}

func TestUpsertBatch_IsIdempotent(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	batch := []validation.Record{
		record("a@example.com", 3000, 700, 30),
		record("b@example.com", 4000, 650, 45),
		record("c@example.com", 5000, 600, 60),
	}

	for i := 0; i < 2; i++ {
		success, failed, errs := repo.UpsertBatch(ctx, batch)
		assert.Equal(t, 3, success)
		assert.Equal(t, 0, failed)
		assert.Empty(t, errs)
	}

	var count int64
	require.NoError(t, repo.DB().Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestCSVUploadRepository_CreateStartsPending(t *testing.T) {
	repo := NewCSVUploadRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, "users.csv", "uploads/20260828-abc123-users.csv")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	upload, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusPending, upload.Status)
	assert.Equal(t, "users.csv", upload.FileName)
	assert.Nil(t, upload.TotalRecords, "counts stay unset until processing starts")
	assert.Nil(t, upload.ProcessedAt)
}

func TestCSVUploadRepository_FinalizeCompleted(t *testing.T) {
	repo := NewCSVUploadRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, "users.csv", "uploads/users.csv")
	require.NoError(t, err)
	require.NoError(t, repo.MarkProcessing(ctx, id))

	err = repo.Finalize(ctx, id, models.UploadStatusCompleted, 10, 8, 2,
		"row 3: invalid email; row 7: age 17 out of range (18-100)",
		[]string{"row 3: invalid email", "row 7: age 17 out of range (18-100)"})
	require.NoError(t, err)

	upload, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusCompleted, upload.Status)
	require.NotNil(t, upload.TotalRecords)
	require.NotNil(t, upload.ProcessedRecords)
	require.NotNil(t, upload.FailedRecords)
	assert.Equal(t, 10, *upload.TotalRecords)
	assert.Equal(t, 8, *upload.ProcessedRecords)
	assert.Equal(t, 2, *upload.FailedRecords)
	assert.Equal(t, *upload.TotalRecords, *upload.ProcessedRecords+*upload.FailedRecords)
	assert.NotEmpty(t, upload.ErrorMessage)
	assert.NotEmpty(t, upload.RowErrors)
	require.NotNil(t, upload.ProcessedAt)
}

func TestCSVUploadRepository_FinalizeTwiceLastWriteWins(t *testing.T) {
	repo := NewCSVUploadRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, "users.csv", "uploads/users.csv")
	require.NoError(t, err)

	require.NoError(t, repo.Finalize(ctx, id, models.UploadStatusCompleted, 5, 5, 0, "", nil))
	require.NoError(t, repo.Finalize(ctx, id, models.UploadStatusCompleted, 5, 5, 0, "", nil))

	upload, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusCompleted, upload.Status)
	assert.Equal(t, 5, *upload.TotalRecords)
	assert.Equal(t, 5, *upload.ProcessedRecords)
	assert.Equal(t, 0, *upload.FailedRecords)
}

func TestCSVUploadRepository_FinalizeFailureLeavesCountsUnset(t *testing.T) {
	repo := NewCSVUploadRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, "users.csv", "uploads/users.csv")
	require.NoError(t, err)

	require.NoError(t, repo.FinalizeFailure(ctx, id, "failed to fetch s3://bucket/key: access denied"))

	upload, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusFailed, upload.Status)
	assert.NotEmpty(t, upload.ErrorMessage)
	assert.Nil(t, upload.TotalRecords)
	require.NotNil(t, upload.ProcessedAt)
}

func TestCSVUploadRepository_ListNewestFirst(t *testing.T) {
	repo := NewCSVUploadRepository(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"first.csv", "second.csv", "third.csv"} {
		_, err := repo.Create(ctx, name, "uploads/"+name)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	uploads, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "third.csv", uploads[0].FileName)
	assert.Equal(t, "second.csv", uploads[1].FileName)
}
