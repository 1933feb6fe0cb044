package memory

import (
	"context"
	"sync"
)

type InMemoryBlobStore struct {
	items map[string]string
	mu    sync.RWMutex
}

func NewBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{
		items: make(map[string]string),
	}
}

func (s *InMemoryBlobStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	return value, ok, nil
}

func (s *InMemoryBlobStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

// Keys lists the keys that have been written.
func (s *InMemoryBlobStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}
