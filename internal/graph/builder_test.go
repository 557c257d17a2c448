package graph_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/graph"
	"github.com/couchcryptid/seismic-data-service/internal/graph/memory"
	"github.com/couchcryptid/seismic-data-service/internal/observability"
)

func testBuilder(store graph.Store) *graph.Builder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return graph.NewBuilder(store, logger, observability.NewMetricsForTesting())
}

func testEvent(id int64, lat, lon float64, mag *float64, ref string) domain.SeismicEvent {
	return domain.SeismicEvent{
		ID:          id,
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Time:        "10:30:00",
		Magnitude:   mag,
		Latitude:    lat,
		Longitude:   lon,
		DepthKm:     12.5,
		LocationRef: ref,
		Status:      "revisado",
	}
}

func edgesByKind(t *testing.T, store graph.Store, code string) map[graph.EdgeKind][]graph.Edge {
	t.Helper()
	edges, err := store.EdgesFrom(context.Background(), []string{code})
	require.NoError(t, err)
	out := make(map[graph.EdgeKind][]graph.Edge)
	for _, e := range edges {
		out[e.Kind] = append(out[e.Kind], e)
	}
	return out
}

func TestBuildEventCreatesNodeLocationAndOccurredAt(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	node, err := b.BuildEvent(context.Background(), testEvent(1, 19.4, -99.1, domain.Float64Ptr(6.2), "12 km al sur de Tlapa"))
	require.NoError(t, err)
	assert.NotEmpty(t, node.Code)
	assert.Equal(t, int64(1), node.EventID)

	locs, err := store.AllLocationNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "12 km al sur de Tlapa", locs[0].Name)

	kinds := edgesByKind(t, store, node.Code)
	require.Len(t, kinds[graph.EdgeOccurredAt], 1)
	assert.Equal(t, locs[0].Code, kinds[graph.EdgeOccurredAt][0].To)
}

func TestBuildAllRelatesEventsInBothDirections(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	// Roughly 3 km apart along a meridian, magnitudes within 0.5 of each other.
	events := []domain.SeismicEvent{
		testEvent(1, 16.000, -98.000, domain.Float64Ptr(5.0), "costa de Guerrero"),
		testEvent(2, 16.027, -98.000, domain.Float64Ptr(5.3), "costa de Guerrero"),
	}
	require.NoError(t, b.BuildAll(context.Background(), events))

	nodes, err := store.AllEventNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	byID := make(map[int64]graph.EventNode, 2)
	for _, n := range nodes {
		byID[n.EventID] = n
	}

	first := edgesByKind(t, store, byID[1].Code)
	second := edgesByKind(t, store, byID[2].Code)

	require.Len(t, first[graph.EdgeNearby], 1)
	assert.Equal(t, byID[2].Code, first[graph.EdgeNearby][0].To)
	require.Len(t, first[graph.EdgeSimilarMagnitude], 1)
	assert.Equal(t, byID[2].Code, first[graph.EdgeSimilarMagnitude][0].To)

	require.Len(t, second[graph.EdgeNearby], 1)
	assert.Equal(t, byID[1].Code, second[graph.EdgeNearby][0].To)
	require.Len(t, second[graph.EdgeSimilarMagnitude], 1)
	assert.Equal(t, byID[1].Code, second[graph.EdgeSimilarMagnitude][0].To)
}

func TestBuildAllDeduplicatesLocations(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	events := []domain.SeismicEvent{
		testEvent(1, 16.000, -98.000, domain.Float64Ptr(5.0), "costa de Guerrero"),
		// Within the 5 km tolerance of the first mention.
		testEvent(2, 16.027, -98.000, domain.Float64Ptr(5.3), "cerca de la costa de Guerrero"),
		// Hundreds of kilometers away.
		testEvent(3, 19.400, -99.100, domain.Float64Ptr(4.1), "Ciudad de Mexico"),
	}
	require.NoError(t, b.BuildAll(context.Background(), events))

	locs, err := store.AllLocationNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)
	// The deduplicated node keeps the name of the first mention.
	assert.Equal(t, "costa de Guerrero", locs[0].Name)
}

func TestBuildAllCapsFanOutAndNeverSelfLinks(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	// Eight events clustered within a couple of kilometers, same magnitude.
	var events []domain.SeismicEvent
	for i := 0; i < 8; i++ {
		events = append(events, testEvent(int64(i+1), 16.0+float64(i)*0.002, -98.0, domain.Float64Ptr(5.0), "enjambre"))
	}
	require.NoError(t, b.BuildAll(context.Background(), events))

	nodes, err := store.AllEventNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 8)

	for _, node := range nodes {
		kinds := edgesByKind(t, store, node.Code)
		assert.Len(t, kinds[graph.EdgeNearby], 5)
		assert.Len(t, kinds[graph.EdgeSimilarMagnitude], 5)
		for kind, edges := range kinds {
			for _, e := range edges {
				assert.NotEqual(t, node.Code, e.To, "self edge of kind %s", kind)
			}
		}
	}
}

func TestBuildEventWithoutMagnitudeSkipsSimilarity(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	_, err := b.BuildEvent(context.Background(), testEvent(1, 16.0, -98.0, domain.Float64Ptr(5.0), "costa"))
	require.NoError(t, err)

	node, err := b.BuildEvent(context.Background(), testEvent(2, 16.01, -98.0, nil, "costa"))
	require.NoError(t, err)

	kinds := edgesByKind(t, store, node.Code)
	assert.Len(t, kinds[graph.EdgeNearby], 1)
	assert.Empty(t, kinds[graph.EdgeSimilarMagnitude])
}

func TestBuildEventRelatesOnlyToPreviouslyStoredEvents(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	first, err := b.BuildEvent(context.Background(), testEvent(1, 16.0, -98.0, domain.Float64Ptr(5.0), "costa"))
	require.NoError(t, err)
	second, err := b.BuildEvent(context.Background(), testEvent(2, 16.01, -98.0, domain.Float64Ptr(5.2), "costa"))
	require.NoError(t, err)

	// Incremental builds look backwards only.
	assert.Empty(t, edgesByKind(t, store, first.Code)[graph.EdgeNearby])
	assert.Len(t, edgesByKind(t, store, second.Code)[graph.EdgeNearby], 1)
}
