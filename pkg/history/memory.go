package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps runs in memory. Records are lost when the process
// exits.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]*Run
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// Record stores a copy of run.
func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.runs[run.ID] = run.clone()
	return nil
}

// List returns copies of the most recent runs.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	runs := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r.clone())
	}
	sortNewestFirst(runs)

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Prune deletes runs started before the given time.
func (s *MemoryStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	var deleted int64
	for id, r := range s.runs {
		if r.Started.Before(before) {
			delete(s.runs, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases the records.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.runs = nil
	return nil
}
