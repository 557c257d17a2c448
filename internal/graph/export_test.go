package graph_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/graph"
	"github.com/couchcryptid/seismic-data-service/internal/graph/memory"
)

func TestVisualizationEmitsEventsLocationsAndEdges(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	events := []domain.SeismicEvent{
		testEvent(1, 16.000, -98.000, domain.Float64Ptr(5.0), "costa de Guerrero"),
		testEvent(2, 16.027, -98.000, domain.Float64Ptr(5.3), "costa de Guerrero"),
	}
	require.NoError(t, b.BuildAll(context.Background(), events))

	data, err := graph.NewExporter(store).Visualization(context.Background(), 0, 10, 100)
	require.NoError(t, err)

	// Two event nodes plus the single deduplicated location.
	require.Len(t, data.Nodes, 3)
	groups := map[string]int{}
	for _, n := range data.Nodes {
		groups[n.Group]++
	}
	assert.Equal(t, 2, groups["event"])
	assert.Equal(t, 1, groups["location"])

	// OCCURRED_AT, NEARBY, and SIMILAR_MAGNITUDE for each event.
	require.Len(t, data.Edges, 6)
	labels := map[string]int{}
	for _, e := range data.Edges {
		labels[e.Label]++
	}
	assert.Equal(t, 2, labels["OCCURRED_AT"])
	assert.Equal(t, 2, labels["NEARBY"])
	assert.Equal(t, 2, labels["SIMILAR_MAGNITUDE"])
}

func TestVisualizationNodeShape(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	node, err := b.BuildEvent(context.Background(), testEvent(1, 19.4, -99.1, domain.Float64Ptr(6.2), "Ciudad de Mexico"))
	require.NoError(t, err)

	data, err := graph.NewExporter(store).Visualization(context.Background(), 0, 10, 100)
	require.NoError(t, err)
	require.Len(t, data.Nodes, 2)

	ev := data.Nodes[0]
	assert.Equal(t, "event_"+node.Code, ev.ID)
	assert.Equal(t, "Event 6.2", ev.Label)
	assert.Equal(t, "event", ev.Group)
	assert.Equal(t, "Date: 2024-03-15, Magnitude: 6.2", ev.Title)

	loc := data.Nodes[1]
	assert.Equal(t, "Ciudad de Mexico", loc.Label)
	assert.Equal(t, "location", loc.Group)
	assert.Empty(t, loc.Title)
}

func TestVisualizationFiltersByMagnitude(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	events := []domain.SeismicEvent{
		testEvent(1, 16.0, -98.0, domain.Float64Ptr(7.2), "costa de Guerrero"),
		testEvent(2, 19.4, -99.1, domain.Float64Ptr(4.0), "Ciudad de Mexico"),
	}
	require.NoError(t, b.BuildAll(context.Background(), events))

	data, err := graph.NewExporter(store).Visualization(context.Background(), 7, 10, 100)
	require.NoError(t, err)

	// The weak event and its location stay out of the selection.
	require.Len(t, data.Nodes, 2)
	for _, n := range data.Nodes {
		assert.NotEqual(t, "Ciudad de Mexico", n.Label)
	}
}

func TestVisualizationIsIdempotent(t *testing.T) {
	store := memory.New()
	b := testBuilder(store)

	events := []domain.SeismicEvent{
		testEvent(1, 16.000, -98.000, domain.Float64Ptr(5.0), "costa de Guerrero"),
		testEvent(2, 16.027, -98.000, domain.Float64Ptr(5.3), "costa de Guerrero"),
		testEvent(3, 19.400, -99.100, domain.Float64Ptr(6.8), "Ciudad de Mexico"),
	}
	require.NoError(t, b.BuildAll(context.Background(), events))

	exporter := graph.NewExporter(store)
	first, err := exporter.Visualization(context.Background(), 0, 10, 100)
	require.NoError(t, err)
	second, err := exporter.Visualization(context.Background(), 0, 10, 100)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("visualization changed between identical calls (-first +second):\n%s", diff)
	}
}
