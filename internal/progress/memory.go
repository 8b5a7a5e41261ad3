package progress

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore builds an in-process Store. Used when Redis is not
// configured; snapshots live until deleted.
func NewMemoryStore() Store {
	return &memoryStore{snaps: make(map[string]Snapshot)}
}

func (s *memoryStore) Set(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.RunID] = snap
	return nil
}

func (s *memoryStore) Get(_ context.Context, runID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[runID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *memoryStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, runID)
	return nil
}
