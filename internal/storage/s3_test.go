package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUploadKey(t *testing.T) {
	key := NewUploadKey("users.csv")

	assert.Regexp(t,
		regexp.MustCompile(`^uploads/\d{8}-\d{6}-[0-9a-f]{8}-users\.csv$`),
		key,
	)
}

func TestNewUploadKey_Unique(t *testing.T) {
	first := NewUploadKey("users.csv")
	second := NewUploadKey("users.csv")

	assert.NotEqual(t, first, second, "same filename must not collide")
}
