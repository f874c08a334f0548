package store

import (
	"context"
	"sync"

	"crm/internal/contact/models"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

// InMemory keeps contacts in insertion order behind a single lock. Every
// method returns copies so callers cannot mutate stored records.
type InMemory struct {
	mu       sync.RWMutex
	contacts map[id.ContactID]*models.Contact
	order    []id.ContactID
}

func NewInMemory() *InMemory {
	return &InMemory{contacts: make(map[id.ContactID]*models.Contact)}
}

func (s *InMemory) IsValidID(raw string) bool {
	return ValidID(raw)
}

func (s *InMemory) Insert(_ context.Context, c *models.Contact) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(c)
	if stored.ID.IsNil() {
		stored.ID = id.NewContactID()
	}
	if _, exists := s.contacts[stored.ID]; exists {
		return nil, sentinel.ErrConflict
	}
	s.contacts[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return clone(stored), nil
}

func (s *InMemory) FindAll(_ context.Context) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Contact, 0, len(s.order))
	for _, contactID := range s.order {
		out = append(out, clone(s.contacts[contactID]))
	}
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, contactID id.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemory) UpdateByID(_ context.Context, contactID id.ContactID, u models.Update) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[contactID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.Apply(u)
	return clone(c), nil
}

func (s *InMemory) DeleteByID(_ context.Context, contactID id.ContactID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[contactID]; !ok {
		return false, nil
	}
	delete(s.contacts, contactID)
	for i, existing := range s.order {
		if existing == contactID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *InMemory) Health(_ context.Context) error {
	return nil
}

func (s *InMemory) Close() error {
	return nil
}

func clone(c *models.Contact) *models.Contact {
	cp := *c
	if c.ModifiedDate != nil {
		modified := *c.ModifiedDate
		cp.ModifiedDate = &modified
	}
	return &cp
}
