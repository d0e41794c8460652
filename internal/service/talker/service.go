package talker

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
	"github.com/zhouzirui/talker-manager/backend/internal/service/events"
)

var ErrNotFound = errors.New("talker not found")

// Publisher receives a notification after every successful mutation.
type Publisher interface {
	Publish(typ events.Type, t talker.Talker) events.Event
}

// Service applies talker operations to a Store. Every call reloads the
// collection from the store; mutations hold the write lock for the whole
// load-modify-save sequence so concurrent writers never lose an update.
type Service struct {
	mu     sync.RWMutex
	store  talker.Store
	events Publisher
}

// NewService wires a Service to store. pub may be nil.
func NewService(store talker.Store, pub Publisher) *Service {
	return &Service{store: store, events: pub}
}

// List returns the whole collection in stored order.
func (s *Service) List(ctx context.Context) ([]talker.Talker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Load(ctx)
}

// Search returns talkers whose name contains query, in stored order. An
// empty query matches everything.
//
// Matching deliberately ignores case, so "an" finds both "Ana" and
// "Anabela". This departs from a plain case-sensitive contains; see the
// search entry in DESIGN.md.
func (s *Service) Search(ctx context.Context, query string) ([]talker.Talker, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	needle := strings.ToLower(query)
	matches := make([]talker.Talker, 0, len(all))
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// Get returns the talker with id.
func (s *Service) Get(ctx context.Context, id int) (talker.Talker, error) {
	all, err := s.List(ctx)
	if err != nil {
		return talker.Talker{}, err
	}
	i, ok := indexOf(all, id)
	if !ok {
		return talker.Talker{}, ErrNotFound
	}
	return all[i], nil
}

// Create assigns the next id to t, appends it and persists the collection.
func (s *Service) Create(ctx context.Context, t talker.Talker) (talker.Talker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.Load(ctx)
	if err != nil {
		return talker.Talker{}, err
	}

	t.ID = nextID(all)
	if err := s.store.Save(ctx, append(all, t)); err != nil {
		return talker.Talker{}, err
	}

	s.publish(events.Created, t)
	return t, nil
}

// Update replaces every field of the talker with id except the id itself.
func (s *Service) Update(ctx context.Context, id int, t talker.Talker) (talker.Talker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.Load(ctx)
	if err != nil {
		return talker.Talker{}, err
	}

	i, ok := indexOf(all, id)
	if !ok {
		return talker.Talker{}, ErrNotFound
	}

	t.ID = id
	all[i] = t
	if err := s.store.Save(ctx, all); err != nil {
		return talker.Talker{}, err
	}

	s.publish(events.Updated, t)
	return t, nil
}

// Delete removes the talker with id, keeping the order of the rest.
func (s *Service) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	i, ok := indexOf(all, id)
	if !ok {
		return ErrNotFound
	}

	removed := all[i]
	remaining := make([]talker.Talker, 0, len(all)-1)
	remaining = append(remaining, all[:i]...)
	remaining = append(remaining, all[i+1:]...)
	if err := s.store.Save(ctx, remaining); err != nil {
		return err
	}

	s.publish(events.Deleted, removed)
	return nil
}

func (s *Service) publish(typ events.Type, t talker.Talker) {
	if s.events != nil {
		s.events.Publish(typ, t)
	}
}

func indexOf(all []talker.Talker, id int) (int, bool) {
	for i, t := range all {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// nextID is one past the largest id in use, or 1 for an empty collection.
func nextID(all []talker.Talker) int {
	maxID := 0
	for _, t := range all {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}
