package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mutationwave/entitlements/internal/domain"
)

// ObjectStore keeps media objects in memory. It stands in for the S3 store
// when no bucket is configured.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewObjectStore creates an empty ObjectStore.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string][]byte)}
}

// Put stores the body under key.
func (s *ObjectStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("memory.ObjectStore.Put %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return nil
}

// Size returns the stored size of key in bytes.
func (s *ObjectStore) Size(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.objects[key]
	if !ok {
		return 0, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	return int64(len(b)), nil
}

// Delete removes key.
func (s *ObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}
