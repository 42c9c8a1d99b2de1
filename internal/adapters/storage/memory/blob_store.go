package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/mindlens/internal/domain"
)

type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]string
}

var _ domain.BlobStore = (*BlobStore)(nil)

func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string]string),
	}
}

func (s *BlobStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.blobs[key]
	return v, ok, nil
}

func (s *BlobStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = value
	return nil
}
