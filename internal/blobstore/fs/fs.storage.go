// FilePath: internal/blobstore/fs/fs.storage.go
package fs

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/internal/blobstore"
	"github.com/bokashilab/sensorhub/internal/errors"
)

const (
	defaultMaxBlobSize = 100 * 1024 * 1024 // 100MB
	defaultPermissions = 0755
)

// Config holds configuration for the filesystem blob store
type Config struct {
	BasePath    string
	MaxBlobSize int64
}

// BlobStore stores blobs as flat files under a base path. Content types are
// re-derived from the key's extension on read.
type BlobStore struct {
	config Config
}

// New creates a new filesystem blob store
func New(config Config) (*BlobStore, error) {
	if config.MaxBlobSize <= 0 {
		config.MaxBlobSize = defaultMaxBlobSize
	}
	if err := createDirectoryIfNotExists(config.BasePath); err != nil {
		return nil, err
	}
	return &BlobStore{config: config}, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	dst, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create blob file", err)
	}
	defer dst.Close()

	// LimitReader guards against oversized uploads slipping past the handler.
	n, err := io.Copy(dst, io.LimitReader(data, s.config.MaxBlobSize+1))
	if err != nil {
		os.Remove(path)
		return errors.NewStorageError("failed to write blob", err)
	}
	if n > s.config.MaxBlobSize {
		os.Remove(path)
		return errors.NewValidationError("blob exceeds maximum allowed size", nil)
	}

	nuts.L.Infof("[BlobStore] Stored blob %s (%d bytes, %s)", key, n, contentType)
	return nil
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", blobstore.ErrNotFound
		}
		return nil, "", errors.NewStorageError("failed to read blob", err)
	}
	return data, contentTypeForKey(key), nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return blobstore.ErrNotFound
		}
		return errors.NewStorageError("failed to delete blob", err)
	}
	return nil
}

// resolve maps a key to a path under the base directory, rejecting keys that
// would escape it.
func (s *BlobStore) resolve(key string) (string, error) {
	clean := filepath.Base(filepath.Clean(key))
	if clean == "." || clean == ".." || clean == string(filepath.Separator) || strings.TrimSpace(clean) == "" {
		return "", errors.NewValidationError("invalid blob key", nil)
	}
	return filepath.Join(s.config.BasePath, clean), nil
}

func contentTypeForKey(key string) string {
	ct := mime.TypeByExtension(filepath.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewStorageError("failed to create blob directory", err)
		}
	}
	return nil
}
