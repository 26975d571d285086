package memory

import (
	"context"
	"sync"
)

// IdempotencyStore is the process-local counterpart of the Redis store, used
// when no Redis address is configured. Entries never expire.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]int64
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]int64)}
}

func (s *IdempotencyStore) Lookup(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.keys[key]; !taken {
		s.keys[key] = id
	}
	return nil
}
