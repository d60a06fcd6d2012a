package ingestion

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/aryankumar120/loan-eligibility-engine/internal/models"
	"github.com/aryankumar120/loan-eligibility-engine/internal/repository"
	"github.com/aryankumar120/loan-eligibility-engine/internal/storage"
	"github.com/aryankumar120/loan-eligibility-engine/internal/validation"

	"github.com/google/uuid"
)

// maxErrorMessages bounds the stored error summary so a pathological file
// cannot bloat the csv_uploads row.
const maxErrorMessages = 10

// EventCSVProcessed is the completion event sent to the matching workflow.
const EventCSVProcessed = "csv_processed"

// Notifier is the downstream handoff. Implementations must be best-effort;
// the service never inspects the outcome.
type Notifier interface {
	Notify(event string, payload map[string]interface{})
}

// BatchUpserter applies validated records to the store with per-record
// failure isolation. Satisfied by repository.UserRepository.
type BatchUpserter interface {
	UpsertBatch(ctx context.Context, records []validation.Record) (int, int, []string)
}

type IngestionService struct {
	store      storage.ObjectStore
	upserter   BatchUpserter
	uploadRepo *repository.CSVUploadRepository
	notifier   Notifier
}

func NewIngestionService(
	store storage.ObjectStore,
	upserter BatchUpserter,
	uploadRepo *repository.CSVUploadRepository,
	notifier Notifier,
) *IngestionService {
	return &IngestionService{
		store:      store,
		upserter:   upserter,
		uploadRepo: uploadRepo,
		notifier:   notifier,
	}
}

// Result aggregates one ingestion run. Total counts every data row seen;
// Processed counts successful upserts; Failed counts validation rejections
// plus upsert failures, so Total == Processed + Failed always holds.
type Result struct {
	UploadID  uuid.UUID `json:"upload_id"`
	Total     int       `json:"total_records"`
	Processed int       `json:"processed_records"`
	Failed    int       `json:"failed_records"`
	Errors    []string  `json:"errors,omitempty"`
}

// Process runs one ingestion of s3://bucket/key: create the lifecycle row,
// fetch, parse, validate every row, upsert the valid set, finalize, notify.
// Fetch and parse failures are fatal (upload -> failed, error returned);
// per-row failures only move counts. A run that completes with rejected rows
// still finalizes as completed.
func (s *IngestionService) Process(ctx context.Context, bucket, key string) (*Result, error) {
	log.Printf("processing file s3://%s/%s", bucket, key)

	uploadID, err := s.uploadRepo.Create(ctx, path.Base(key), key)
	if err != nil {
		return nil, err
	}
	log.Println("created upload record:", uploadID)

	data, err := s.store.Fetch(ctx, bucket, key)
	if err != nil {
		fetchErr := &FetchError{Bucket: bucket, Key: key, Err: err}
		s.finalizeFailure(ctx, uploadID, fetchErr.Error())
		return nil, fetchErr
	}

	if err := s.uploadRepo.MarkProcessing(ctx, uploadID); err != nil {
		log.Printf("failed to mark upload %s processing: %v", uploadID, err)
	}

	rows, err := parseRows(data)
	if err != nil {
		parseErr := &ParseError{Err: err}
		s.finalizeFailure(ctx, uploadID, parseErr.Error())
		return nil, parseErr
	}

	total := len(rows)
	failed := 0
	var valid []validation.Record
	var rowErrors []string

	for i, row := range rows {
		outcome := validation.ValidateRow(i+1, row)
		if outcome.Rejection != nil {
			failed++
			rowErrors = append(rowErrors, outcome.Rejection.Error())
			continue
		}
		valid = append(valid, *outcome.Record)
	}
	log.Printf("parsed %d records, %d valid, %d invalid", total, len(valid), failed)

	processed := 0
	if len(valid) > 0 {
		success, upsertFailed, upsertErrors := s.upserter.UpsertBatch(ctx, valid)
		processed = success
		failed += upsertFailed
		rowErrors = append(rowErrors, upsertErrors...)
	}

	summary, detail := summarizeErrors(rowErrors)
	if err := s.uploadRepo.Finalize(
		ctx, uploadID, models.UploadStatusCompleted, total, processed, failed, summary, detail,
	); err != nil {
		log.Printf("failed to finalize upload %s: %v", uploadID, err)
	}
	log.Printf("processing completed: %d/%d records successful", processed, total)

	s.notifier.Notify(EventCSVProcessed, map[string]interface{}{
		"bucket":    bucket,
		"key":       key,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	return &Result{
		UploadID:  uploadID,
		Total:     total,
		Processed: processed,
		Failed:    failed,
		Errors:    detail,
	}, nil
}

func (s *IngestionService) finalizeFailure(ctx context.Context, id uuid.UUID, message string) {
	if err := s.uploadRepo.FinalizeFailure(ctx, id, message); err != nil {
		log.Printf("failed to mark upload %s failed: %v", id, err)
	}
}

// parseRows reads a header-driven CSV into one map per data row. Column
// order is irrelevant; columns missing from a short row are simply absent
// from its map. Any reader error is fatal for the whole payload.
func parseRows(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// Skip completely blank rows
		if len(record) == 0 || strings.Join(record, "") == "" {
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// summarizeErrors keeps the first maxErrorMessages messages: the joined
// string for the error_message column, the slice for the JSON detail.
func summarizeErrors(errs []string) (string, []string) {
	if len(errs) == 0 {
		return "", nil
	}
	if len(errs) > maxErrorMessages {
		errs = errs[:maxErrorMessages]
	}
	return strings.Join(errs, "; "), errs
}
