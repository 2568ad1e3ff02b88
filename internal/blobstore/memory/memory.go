// FilePath: internal/blobstore/memory/memory.go

// Package memory provides an in-memory blob store. Data is lost on restart.
// Useful for testing and ephemeral deployments.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/bokashilab/sensorhub/internal/blobstore"
)

type blob struct {
	data        []byte
	contentType string
}

// Store keeps blobs in a map guarded by a mutex.
type Store struct {
	blobs map[string]blob
	mu    sync.RWMutex
}

// New creates an in-memory blob store
func New() *Store {
	return &Store{
		blobs: make(map[string]blob),
	}
}

func (s *Store) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = blob{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, "", blobstore.ErrNotFound
	}
	return b.data, b.contentType, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return blobstore.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
