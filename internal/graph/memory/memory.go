// Package memory provides a mutex-guarded in-memory graph.Store. The pack of
// relationship queries it answers is small enough that linear scans over the
// node slices match how the service is actually used: materialization is an
// administrative action over a bounded event selection.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/graph"
)

// Store is an in-memory graph.Store safe for concurrent use. All operations
// take the same lock, which also linearizes location find-or-create as the
// interface requires.
type Store struct {
	mu        sync.RWMutex
	events    []graph.EventNode
	locations []graph.LocationNode
	edges     []graph.Edge
	edgeSet   map[string]struct{}
}

// New creates an empty graph store.
func New() *Store {
	return &Store{edgeSet: make(map[string]struct{})}
}

var _ graph.Store = (*Store)(nil)

// FindOrCreateLocation reuses an existing node within toleranceKm, assigning
// it a code if it somehow lacks one, and creates a new named node otherwise.
func (s *Store) FindOrCreateLocation(_ context.Context, name string, lat, lon, toleranceKm float64) (graph.LocationNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.locations {
		if domain.Haversine(s.locations[i].Latitude, s.locations[i].Longitude, lat, lon) <= toleranceKm {
			if s.locations[i].Code == "" {
				s.locations[i].Code = uuid.NewString()
			}
			return s.locations[i], nil
		}
	}

	loc := graph.LocationNode{
		Code:      uuid.NewString(),
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
	s.locations = append(s.locations, loc)
	return loc, nil
}

// SaveEventNode stores an event node, replacing any node with the same code.
func (s *Store) SaveEventNode(_ context.Context, node graph.EventNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].Code == node.Code {
			s.events[i] = node
			return nil
		}
	}
	s.events = append(s.events, node)
	return nil
}

// AddEdge stores an edge with set semantics: duplicates of the same
// (from, to, kind) triple are dropped.
func (s *Store) AddEdge(_ context.Context, edge graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey(edge)
	if _, ok := s.edgeSet[key]; ok {
		return nil
	}
	s.edgeSet[key] = struct{}{}
	s.edges = append(s.edges, edge)
	return nil
}

// EventsWithinRadius returns event nodes within radiusKm of the point, in
// insertion order.
func (s *Store) EventsWithinRadius(_ context.Context, lat, lon, radiusKm float64) ([]graph.EventNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []graph.EventNode
	for _, ev := range s.events {
		if domain.Haversine(ev.Latitude, ev.Longitude, lat, lon) <= radiusKm {
			out = append(out, ev)
		}
	}
	return out, nil
}

// EventsByMagnitudeRange returns event nodes with magnitude in [min, max],
// in insertion order, up to limit (0 means no limit). Nodes without a
// magnitude never match.
func (s *Store) EventsByMagnitudeRange(_ context.Context, min, max float64, limit int) ([]graph.EventNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []graph.EventNode
	for _, ev := range s.events {
		if ev.Magnitude == nil || *ev.Magnitude < min || *ev.Magnitude > max {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// AllEventNodes returns every event node in insertion order.
func (s *Store) AllEventNodes(_ context.Context) ([]graph.EventNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.EventNode, len(s.events))
	copy(out, s.events)
	return out, nil
}

// AllLocationNodes returns every location node in insertion order.
func (s *Store) AllLocationNodes(_ context.Context) ([]graph.LocationNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]graph.LocationNode, len(s.locations))
	copy(out, s.locations)
	return out, nil
}

// LocationsByCodes returns the locations matching the given codes.
func (s *Store) LocationsByCodes(_ context.Context, codes []string) ([]graph.LocationNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	var out []graph.LocationNode
	for _, loc := range s.locations {
		if _, ok := want[loc.Code]; ok {
			out = append(out, loc)
		}
	}
	return out, nil
}

// EdgesFrom returns every edge whose From code is in codes.
func (s *Store) EdgesFrom(_ context.Context, codes []string) ([]graph.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		from[c] = struct{}{}
	}
	var out []graph.Edge
	for _, e := range s.edges {
		if _, ok := from[e.From]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func edgeKey(e graph.Edge) string {
	return fmt.Sprintf("%s|%s|%s", e.From, e.To, e.Kind)
}
