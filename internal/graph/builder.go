package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/observability"
)

const (
	// locationToleranceKm decides when two location mentions are the same place.
	locationToleranceKm = 5.0
	// nearbyRadiusKm bounds the NEARBY relationship.
	nearbyRadiusKm = 25.0
	// magnitudeTolerance bounds SIMILAR_MAGNITUDE to ±0.5.
	magnitudeTolerance = 0.5
	// maxRelated caps fan-out per relationship kind on dense catalogs.
	maxRelated = 5
)

// Builder materializes seismic events into the relationship graph.
//
// Unlike ingestion, materialization fails loudly: any single-event failure
// propagates to the caller, who is responsible for retrying.
type Builder struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBuilder creates a Builder.
func NewBuilder(store Store, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{store: store, logger: logger, metrics: metrics}
}

// BuildEvent materializes one event: find-or-create its location, persist
// the node and its OCCURRED_AT edge, then relate it to previously stored
// events by proximity and magnitude similarity.
func (b *Builder) BuildEvent(ctx context.Context, ev domain.SeismicEvent) (EventNode, error) {
	node, err := b.createNode(ctx, ev)
	if err != nil {
		return EventNode{}, err
	}
	if err := b.relate(ctx, node); err != nil {
		return EventNode{}, err
	}
	b.metrics.GraphEventsBuilt.Inc()
	return node, nil
}

// BuildAll materializes a set of events in two phases: every node is created
// first, then relationships are computed, so events in the same batch relate
// to each other in both directions. Single-event failures do not stop the
// remaining events, but any failure makes the whole call fail.
func (b *Builder) BuildAll(ctx context.Context, events []domain.SeismicEvent) error {
	b.logger.Info("graph materialization started", "events", len(events))

	var errs []error
	nodes := make([]EventNode, 0, len(events))
	for _, ev := range events {
		node, err := b.createNode(ctx, ev)
		if err != nil {
			b.logger.Error("create event node failed", "event_id", ev.ID, "error", err)
			errs = append(errs, fmt.Errorf("event %d: %w", ev.ID, err))
			continue
		}
		nodes = append(nodes, node)
	}

	for _, node := range nodes {
		if err := b.relate(ctx, node); err != nil {
			b.logger.Error("relate event failed", "event_id", node.EventID, "error", err)
			errs = append(errs, fmt.Errorf("event %d: %w", node.EventID, err))
			continue
		}
		b.metrics.GraphEventsBuilt.Inc()
	}

	b.logger.Info("graph materialization finished", "built", len(nodes), "failed", len(errs))
	if len(errs) > 0 {
		return fmt.Errorf("materialize graph: %w", errors.Join(errs...))
	}
	return nil
}

// createNode persists the event node, its deduplicated location, and the
// OCCURRED_AT edge.
func (b *Builder) createNode(ctx context.Context, ev domain.SeismicEvent) (EventNode, error) {
	node := EventNode{
		Code:        uuid.NewString(),
		EventID:     ev.ID,
		Date:        ev.Date,
		Time:        ev.Time,
		Magnitude:   ev.Magnitude,
		Latitude:    ev.Latitude,
		Longitude:   ev.Longitude,
		DepthKm:     ev.DepthKm,
		LocationRef: ev.LocationRef,
		DateUTC:     ev.DateUTC,
		TimeUTC:     ev.TimeUTC,
		Status:      ev.Status,
	}

	loc, err := b.store.FindOrCreateLocation(ctx, ev.LocationRef, ev.Latitude, ev.Longitude, locationToleranceKm)
	if err != nil {
		return EventNode{}, fmt.Errorf("find or create location: %w", err)
	}

	if err := b.store.SaveEventNode(ctx, node); err != nil {
		return EventNode{}, fmt.Errorf("save event node: %w", err)
	}

	if err := b.addEdge(ctx, Edge{From: node.Code, To: loc.Code, Kind: EdgeOccurredAt}); err != nil {
		return EventNode{}, err
	}
	return node, nil
}

// relate computes NEARBY and SIMILAR_MAGNITUDE edges for a node against the
// events currently in the graph.
func (b *Builder) relate(ctx context.Context, node EventNode) error {
	if err := b.relateNearby(ctx, node); err != nil {
		return err
	}
	return b.relateSimilarMagnitude(ctx, node)
}

// relateNearby links the node to up to maxRelated events within 25 km. The
// cap keeps whatever order the store returns; nearest-first is not promised.
func (b *Builder) relateNearby(ctx context.Context, node EventNode) error {
	candidates, err := b.store.EventsWithinRadius(ctx, node.Latitude, node.Longitude, nearbyRadiusKm)
	if err != nil {
		return fmt.Errorf("query nearby events: %w", err)
	}

	count := 0
	for _, other := range candidates {
		if other.Code == node.Code {
			continue
		}
		if count >= maxRelated {
			break
		}
		if err := b.addEdge(ctx, Edge{From: node.Code, To: other.Code, Kind: EdgeNearby}); err != nil {
			return err
		}
		count++
	}
	return nil
}

// relateSimilarMagnitude links the node to up to maxRelated events whose
// magnitude lies within ±0.5. Skipped entirely when magnitude is absent.
func (b *Builder) relateSimilarMagnitude(ctx context.Context, node EventNode) error {
	if node.Magnitude == nil {
		return nil
	}
	m := *node.Magnitude

	candidates, err := b.store.EventsByMagnitudeRange(ctx, m-magnitudeTolerance, m+magnitudeTolerance, 0)
	if err != nil {
		return fmt.Errorf("query similar magnitude events: %w", err)
	}

	count := 0
	for _, other := range candidates {
		if other.Code == node.Code {
			continue
		}
		if count >= maxRelated {
			break
		}
		if err := b.addEdge(ctx, Edge{From: node.Code, To: other.Code, Kind: EdgeSimilarMagnitude}); err != nil {
			return err
		}
		count++
	}
	return nil
}

func (b *Builder) addEdge(ctx context.Context, edge Edge) error {
	if err := b.store.AddEdge(ctx, edge); err != nil {
		return fmt.Errorf("add %s edge: %w", edge.Kind, err)
	}
	b.metrics.GraphEdges.WithLabelValues(string(edge.Kind)).Inc()
	return nil
}
