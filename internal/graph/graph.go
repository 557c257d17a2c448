// Package graph derives and stores the relationship graph among seismic
// events and deduplicated locations: which place an event occurred at, which
// events happened nearby, and which share a similar magnitude.
package graph

import (
	"context"
	"time"
)

// EdgeKind labels a directed relationship from an event node.
type EdgeKind string

const (
	EdgeOccurredAt       EdgeKind = "OCCURRED_AT"
	EdgeNearby           EdgeKind = "NEARBY"
	EdgeSimilarMagnitude EdgeKind = "SIMILAR_MAGNITUDE"
)

// EventNode mirrors a stored SeismicEvent inside the graph. Code is the graph
// identity; EventID carries the event-store id so the two stores can evolve
// independently without object references between them.
type EventNode struct {
	Code        string    `json:"code"`
	EventID     int64     `json:"eventId"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Magnitude   *float64  `json:"magnitude"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	DepthKm     float64   `json:"depthKm"`
	LocationRef string    `json:"locationRef"`
	DateUTC     time.Time `json:"dateUtc"`
	TimeUTC     string    `json:"timeUtc"`
	Status      string    `json:"status"`
}

// LocationNode is a deduplicated place. Two location mentions within 5 km of
// each other resolve to the same node.
type LocationNode struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Edge is a directed relationship between two node codes.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Store persists graph nodes and edges. Edge persistence has set semantics:
// re-adding an existing (from, to, kind) triple is a no-op, so rebuilding the
// graph over the same events never duplicates relationships.
type Store interface {
	// FindOrCreateLocation returns an existing location within toleranceKm of
	// the coordinates, or creates one with the given name. Implementations
	// must linearize the lookup-and-create so concurrent builders cannot
	// produce duplicate nodes for the same place. The returned node always
	// carries a non-empty Code.
	FindOrCreateLocation(ctx context.Context, name string, lat, lon, toleranceKm float64) (LocationNode, error)

	SaveEventNode(ctx context.Context, node EventNode) error
	AddEdge(ctx context.Context, edge Edge) error

	EventsWithinRadius(ctx context.Context, lat, lon, radiusKm float64) ([]EventNode, error)
	EventsByMagnitudeRange(ctx context.Context, min, max float64, limit int) ([]EventNode, error)
	AllEventNodes(ctx context.Context) ([]EventNode, error)
	AllLocationNodes(ctx context.Context) ([]LocationNode, error)
	LocationsByCodes(ctx context.Context, codes []string) ([]LocationNode, error)
	EdgesFrom(ctx context.Context, codes []string) ([]Edge, error)
}
