package cache

import (
	"context"
	"sync"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

// MemoryStore keeps the last result set in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	last *models.ResultSet
}

// NewMemoryStore creates an empty in-memory result store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the stored result set
func (s *MemoryStore) Save(_ context.Context, rs *models.ResultSet) error {
	s.mu.Lock()
	s.last = rs
	s.mu.Unlock()
	return nil
}

// Last returns the stored result set or models.ErrNoResult
func (s *MemoryStore) Last(_ context.Context) (*models.ResultSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, models.ErrNoResult
	}
	return s.last, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
