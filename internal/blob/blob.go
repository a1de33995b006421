// Package blob stores document attachment payloads behind a small S3-like interface.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"studyboard/internal/config"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverMemory Driver = "memory" // process lifetime, default
	DriverS3     Driver = "s3"     // S3 / MinIO compatible
)

var (
	ErrNotFound = errors.New("blob not found")
	ErrExists   = errors.New("blob already exists")
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the attachment backend.
type Store interface {
	// Put stores a new blob at key and fails with ErrExists if the key is taken.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns the blob and its content. The caller closes the reader.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes a blob. It returns (false, nil) when nothing was stored.
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

// Open builds the store selected by the attachments config section.
func Open(ctx context.Context, cfg config.AttachmentsConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
