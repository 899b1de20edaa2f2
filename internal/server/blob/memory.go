package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"legacyvault/internal/common"
)

const memoryURLPrefix = "mem://"

// MemoryStore is an in-memory Store used in tests. URLs use a mem:// scheme
// so that delete-by-URL behaves like the S3 implementation.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr and DeleteErr, when set, are returned by the corresponding
	// operation to simulate blob store failures.
	PutErr    error
	DeleteErr error
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// URL returns the mem:// URL of key.
func (s *MemoryStore) URL(key string) string {
	return memoryURLPrefix + key
}

// Delete removes the object identified by a key or a mem:// URL. Deleting a
// missing object is an error, mirroring a failed remote delete.
func (s *MemoryStore) Delete(ctx context.Context, keyOrURL string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	key := strings.TrimPrefix(keyOrURL, memoryURLPrefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("object %s: %w", key, common.ErrorNotFound)
	}
	delete(s.objects, key)
	return nil
}

// Get returns the stored bytes for a key or mem:// URL, for assertions.
func (s *MemoryStore) Get(keyOrURL string) ([]byte, bool) {
	key := strings.TrimPrefix(keyOrURL, memoryURLPrefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
