package store

import (
	"context"
	"sync"
	"time"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
)

// MemoryStore keeps trajectories in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Trajectory
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Trajectory)}
}

func (s *MemoryStore) Put(ctx context.Context, t *Trajectory) error {
	if err := errors.ValidateID(t.ID); err != nil {
		return err
	}
	cp := *t
	s.mu.Lock()
	s.items[t.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Trajectory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "trajectory %q not found", id)
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// List returns copies of every trajectory, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]*Trajectory, error) {
	s.mu.RLock()
	out := make([]*Trajectory, 0, len(s.items))
	for _, t := range s.items {
		cp := *t
		out = append(out, &cp)
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.items {
		if t.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }

var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
	_ Pruner = (*MemoryStore)(nil)
)
