package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidStoreConfig = errors.New("invalid object store configuration")

type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	ETag     string `json:"etag,omitempty"`
}

// ObjectStore keeps tournament archives. Keys are slash separated paths
// relative to the bucket root.
type ObjectStore interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
