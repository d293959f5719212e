package storage

import (
	"context"
	"fmt"
	"time"
)

// ObjectStore uploads image bytes to an external blob service and returns
// the public URL under which they are served. Handlers depend only on this
// interface; the JetStream implementation is wired in at startup.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// File is an uploaded file held fully in memory by the upload gate.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// BuildKey derives the storage key for an uploaded file:
// {folder}/{originalFilename}-{timestamp}. Re-uploading the same file in the
// same millisecond overwrites the previous object.
func BuildKey(folder, filename string) string {
	return fmt.Sprintf("%s/%s-%d", folder, filename, time.Now().UnixMilli())
}
