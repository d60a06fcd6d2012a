package ingestion

import "fmt"

// FetchError means the source payload could not be read from the object
// store. Fatal for the run; the upload is finalized as failed.
type FetchError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the payload is not a well-formed table. Handled exactly
// like a fetch failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse CSV payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
