// Package memory provides an in-memory EventStore used in tests and in
// DSN-less runs where no Postgres is configured.
package memory

import (
	"context"
	"sync"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/store"
)

// Store is a mutex-guarded in-memory EventStore. IDs are assigned
// sequentially on save.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	events []domain.SeismicEvent
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{nextID: 1}
}

var _ store.EventStore = (*Store)(nil)

// SaveBatch stores all events or none of them.
func (s *Store) SaveBatch(_ context.Context, events []domain.SeismicEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		ev.ID = s.nextID
		s.nextID++
		s.events = append(s.events, ev)
	}
	return nil
}

// Save stores one event and returns its assigned id.
func (s *Store) Save(_ context.Context, ev domain.SeismicEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.nextID
	s.nextID++
	s.events = append(s.events, ev)
	return ev.ID, nil
}

// EventsAboveMagnitude returns events with magnitude strictly greater than min.
// Events without a magnitude never match.
func (s *Store) EventsAboveMagnitude(_ context.Context, min float64) ([]domain.SeismicEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SeismicEvent
	for _, ev := range s.events {
		if ev.Magnitude != nil && *ev.Magnitude > min {
			out = append(out, ev)
		}
	}
	return out, nil
}

// EventByID returns the stored event or store.ErrNotFound.
func (s *Store) EventByID(_ context.Context, id int64) (domain.SeismicEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return domain.SeismicEvent{}, store.ErrNotFound
}

// CountEvents returns the number of stored events.
func (s *Store) CountEvents(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events)), nil
}
