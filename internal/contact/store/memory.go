package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"contactbook/internal/contact/models"
	"contactbook/pkg/platform/sentinel"
)

// InMemory stores contacts keyed by ID. Contacts going in and out are cloned,
// so nothing outside the store holds a reference to a stored record.
type InMemory struct {
	mu       sync.RWMutex
	contacts map[string]*models.Contact
}

func NewInMemory() *InMemory {
	return &InMemory{contacts: make(map[string]*models.Contact)}
}

// CreateIfIDAvailable stores c unless its ID is already taken.
func (s *InMemory) CreateIfIDAvailable(_ context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contacts[c.ID()]; exists {
		return fmt.Errorf("contact %q: %w", c.ID(), sentinel.ErrConflict)
	}
	s.contacts[c.ID()] = c.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %q: %w", id, sentinel.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return fmt.Errorf("contact %q: %w", id, sentinel.ErrNotFound)
	}
	delete(s.contacts, id)
	return nil
}

// Execute loads the contact, runs validate against it and, only if validate
// succeeds, runs mutate on the stored record. Both run under the write lock
// and either may be nil. Errors from either are returned unchanged; changes
// mutate made before failing are kept. The returned contact is a clone of the
// stored result.
func (s *InMemory) Execute(_ context.Context, id string, validate func(*models.Contact) error, mutate func(*models.Contact) error) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %q: %w", id, sentinel.ErrNotFound)
	}
	if validate != nil {
		if err := validate(c); err != nil {
			return nil, err
		}
	}
	if mutate != nil {
		if err := mutate(c); err != nil {
			return nil, err
		}
	}
	return c.Clone(), nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts), nil
}

// List returns clones of every stored contact ordered by ID.
func (s *InMemory) List(_ context.Context) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (s *InMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = make(map[string]*models.Contact)
}
