package memory

import (
	"context"
	"sync"

	audit "contactbook/pkg/platform/audit"
)

// DefaultMaxEvents bounds the store when no explicit limit is given.
const DefaultMaxEvents = 10000

// InMemoryStore keeps audit events per contact in arrival order. Once it
// holds maxEvents events the oldest is dropped for each new one.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    map[string][]audit.Event
	order     []audit.Event
	maxEvents int
}

type Option func(*InMemoryStore)

// WithMaxEvents sets the retention bound. A non-positive value keeps every
// event.
func WithMaxEvents(n int) Option {
	return func(s *InMemoryStore) {
		s.maxEvents = n
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		events:    make(map[string][]audit.Event),
		maxEvents: DefaultMaxEvents,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]audit.Event)
	s.order = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ContactID] = append(s.events[event.ContactID], event)
	s.order = append(s.order, event)
	if s.maxEvents > 0 && len(s.order) > s.maxEvents {
		s.evictOldest()
	}
	return nil
}

// evictOldest drops the oldest event. It is also the oldest of its contact.
func (s *InMemoryStore) evictOldest() {
	oldest := s.order[0]
	s.order = s.order[1:]

	remaining := s.events[oldest.ContactID][1:]
	if len(remaining) == 0 {
		delete(s.events, oldest.ContactID)
		return
	}
	s.events[oldest.ContactID] = remaining
}

func (s *InMemoryStore) ListByContact(_ context.Context, contactID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[contactID]...), nil
}

// ListRecent returns up to limit of the most recently appended events, oldest
// first. A non-positive limit returns every event.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.order) - limit
	if start < 0 || limit <= 0 {
		start = 0
	}
	return append([]audit.Event{}, s.order[start:]...), nil
}
