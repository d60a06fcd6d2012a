package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	// MaxUploadBytes is the largest CSV a client may upload (10 MiB).
	MaxUploadBytes = 10 * 1024 * 1024

	// UploadURLTTL bounds how long an issued upload URL stays valid.
	UploadURLTTL = time.Hour

	fetchTimeout = 30 * time.Second
)

// ObjectStore is the ingestion pipeline's view of the object store: fetch a
// payload by location reference.
type ObjectStore interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// UploadURL is a time-bounded authorization to write one object directly to
// the store, plus the key the object will land under.
type UploadURL struct {
	URL       string    `json:"upload_url"`
	Key       string    `json:"s3_key"`
	Bucket    string    `json:"bucket"`
	MaxBytes  int64     `json:"max_bytes"`
	ExpiresAt time.Time `json:"expires_at"`
}

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
}

func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

// Fetch downloads one object. Bounded by its own timeout so a stalled store
// cannot hang an ingestion run.
func (s *S3Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// PresignUpload issues a presigned PUT for a namespaced key. Content
// inspection happens later, in the ingestion run; this only authorizes the
// write.
func (s *S3Store) PresignUpload(ctx context.Context, bucket, filename, contentType string) (*UploadURL, error) {
	key := NewUploadKey(filename)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = UploadURLTTL
	})
	if err != nil {
		return nil, err
	}

	return &UploadURL{
		URL:       req.URL,
		Key:       key,
		Bucket:    bucket,
		MaxBytes:  MaxUploadBytes,
		ExpiresAt: time.Now().Add(UploadURLTTL),
	}, nil
}

// NewUploadKey namespaces an uploaded file under uploads/ with a timestamp
// and a short unique id, so two uploads of the same filename never collide.
func NewUploadKey(filename string) string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	shortID := uuid.New().String()[:8]
	return fmt.Sprintf("uploads/%s-%s-%s", timestamp, shortID, filename)
}
