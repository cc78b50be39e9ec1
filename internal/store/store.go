package store

import (
	"slices"
	"sync"

	"campusevents/internal/models"
)

// Store owns the fetched catalog and the user's registration set.
// It never performs I/O. The mutex only sequences a completed fetch against
// readers; concurrent writers are not coordinated beyond that.
type Store struct {
	mu         sync.RWMutex
	catalog    models.Catalog
	registered []models.Event
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		catalog:    models.Catalog{},
		registered: []models.Event{},
	}
}

// SetCatalog replaces the catalog in full.
func (s *Store) SetCatalog(events models.Catalog) {
	next := slices.Clone(events)
	if next == nil {
		next = models.Catalog{}
	}

	s.mu.Lock()
	s.catalog = next
	s.mu.Unlock()
}

// Catalog returns a copy of the current catalog.
func (s *Store) Catalog() models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalog)
}

// Register appends the event to the registration set unless an event with the
// same ID is already there. It reports whether the set grew.
func (s *Store) Register(event models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(event.ID) >= 0 {
		return false
	}
	s.registered = append(s.registered, event)
	return true
}

// Cancel removes every registration sharing the event's ID.
// It reports whether anything was removed.
func (s *Store) Cancel(event models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.registered)
	s.registered = slices.DeleteFunc(s.registered, func(e models.Event) bool {
		return e.ID == event.ID
	})
	return len(s.registered) != before
}

// RegisteredCount returns the size of the registration set.
func (s *Store) RegisteredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registered)
}

// Registered returns the registration set in insertion order.
func (s *Store) Registered() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.registered)
}

// IsRegistered reports whether an event with the given ID is registered.
func (s *Store) IsRegistered(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.registered, func(e models.Event) bool {
		return e.ID == id
	})
}
