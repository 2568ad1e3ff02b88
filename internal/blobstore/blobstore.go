// FilePath: internal/blobstore/blobstore.go

// Package blobstore abstracts the object storage used for camera snapshots.
// The core treats it as a put/get/delete key-value store.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates that no blob exists under the requested key.
var ErrNotFound = errors.New("blob not found")

// Store is a minimal blob store. Keys are flat, opaque strings generated at
// ingestion time.
type Store interface {
	// Put stores the blob under key with its declared content type.
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
	// Get returns the blob content and its content type.
	Get(ctx context.Context, key string) ([]byte, string, error)
	// Delete removes the blob. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}
