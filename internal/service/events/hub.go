package events

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
)

// Type names the kind of change an event describes.
type Type string

const (
	Created Type = "created"
	Updated Type = "updated"
	Deleted Type = "deleted"
)

// Event is a single talker change delivered to feed subscribers.
type Event struct {
	ID     string        `json:"id"`
	Type   Type          `json:"type"`
	Talker talker.Talker `json:"talker"`
	At     time.Time     `json:"at"`
}

// Hub fans events out to subscribers. A subscriber whose buffer is full
// misses the event rather than blocking the publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
}

// Subscription receives events until closed.
type Subscription struct {
	C <-chan Event

	ch   chan Event
	hub  *Hub
	once sync.Once
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish stamps and delivers an event to every subscriber.
func (h *Hub) Publish(typ Type, t talker.Talker) Event {
	event := Event{
		ID:     uuid.NewString(),
		Type:   typ,
		Talker: t,
		At:     time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			log.Printf("[events] subscriber buffer full, dropping %s event %s", typ, event.ID)
		}
	}
	return event
}

// Subscribers reports the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unregisters the subscription and closes C. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
	})
}
