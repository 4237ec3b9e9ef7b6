package activity

import (
	"context"
	"sync"

	"itrust/pkg/domain"
)

// MemoryStore keeps activity entries per account, newest last.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.AccountID][]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[domain.AccountID][]Entry)}
}

func (s *MemoryStore) Append(_ context.Context, entries ...Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.AccountID] = append(s.entries[e.AccountID], e)
	}
	return nil
}

func (s *MemoryStore) RecentFor(_ context.Context, accountID domain.AccountID, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[accountID]
	if limit <= 0 || limit > len(stored) {
		limit = len(stored)
	}
	// Stored oldest first; serve newest first.
	out := make([]Entry, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}
