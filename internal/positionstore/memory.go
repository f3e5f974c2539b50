package positionstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps positions in memory. It is used by tests and when
// persistence is disabled.
type MemoryStore struct {
	mu        sync.RWMutex
	positions map[string]Position
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{positions: make(map[string]Position)}
}

func (s *MemoryStore) Load(_ context.Context, docID string) (Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[docID]
	if !ok {
		return Position{}, ErrNotFound
	}
	return pos, nil
}

func (s *MemoryStore) Save(_ context.Context, pos Position) error {
	if err := validate(pos); err != nil {
		return err
	}
	if pos.UpdatedAt.IsZero() {
		pos.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	s.positions[pos.DocID] = pos
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positions[docID]; !ok {
		return ErrNotFound
	}
	delete(s.positions, docID)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Position, error) {
	s.mu.RLock()
	out := make([]Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sortRecent(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// sortRecent orders positions newest first.
func sortRecent(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].UpdatedAt.Equal(ps[j].UpdatedAt) {
			return ps[i].UpdatedAt.After(ps[j].UpdatedAt)
		}
		return ps[i].DocID < ps[j].DocID
	})
}
