package talker

import (
	"context"
	"sync"
)

// Store persists the whole talker collection. Implementations must keep the
// order they were given on Save.
type Store interface {
	Load(ctx context.Context) ([]Talker, error)
	Save(ctx context.Context, talkers []Talker) error
}

// MemoryStore implements Store with an in-memory slice, suitable for tests.
type MemoryStore struct {
	mu    sync.Mutex
	items []Talker
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied talkers.
func NewMemoryStore(items []Talker) *MemoryStore {
	return &MemoryStore{items: append([]Talker(nil), items...)}
}

// Load returns a copy of the stored talkers.
func (s *MemoryStore) Load(_ context.Context) ([]Talker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Talker{}, s.items...), nil
}

// Save replaces the stored talkers.
func (s *MemoryStore) Save(_ context.Context, talkers []Talker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]Talker(nil), talkers...)
	return nil
}
