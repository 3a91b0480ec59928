package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// MemoryStore keeps blobs in process memory. Used for development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]Blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]Blob)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("get blob %s: %w", key, ErrNotFound)
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Blob{Data: data, Version: b.Version}, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, expectedVersion string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.blobs[key]
	if cur.Version != expectedVersion {
		return "", fmt.Errorf("put blob %s at version %q: %w", key, expectedVersion, ErrVersionConflict)
	}

	next := "1"
	if exists {
		n, _ := strconv.ParseInt(cur.Version, 10, 64)
		next = strconv.FormatInt(n+1, 10)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[key] = Blob{Data: stored, Version: next}
	return next, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
