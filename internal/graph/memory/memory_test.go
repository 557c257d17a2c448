package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/graph"
)

func TestAddEdgeHasSetSemantics(t *testing.T) {
	s := New()
	edge := graph.Edge{From: "a", To: "b", Kind: graph.EdgeNearby}

	require.NoError(t, s.AddEdge(context.Background(), edge))
	require.NoError(t, s.AddEdge(context.Background(), edge))
	// Same endpoints, different kind, is a distinct edge.
	require.NoError(t, s.AddEdge(context.Background(), graph.Edge{From: "a", To: "b", Kind: graph.EdgeSimilarMagnitude}))

	edges, err := s.EdgesFrom(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestFindOrCreateLocationReusesNearbyNode(t *testing.T) {
	s := New()

	first, err := s.FindOrCreateLocation(context.Background(), "costa de Guerrero", 16.000, -98.000, 5)
	require.NoError(t, err)
	require.NotEmpty(t, first.Code)

	// About 3 km north, inside the tolerance.
	again, err := s.FindOrCreateLocation(context.Background(), "otro nombre", 16.027, -98.000, 5)
	require.NoError(t, err)
	assert.Equal(t, first.Code, again.Code)
	assert.Equal(t, "costa de Guerrero", again.Name)

	far, err := s.FindOrCreateLocation(context.Background(), "Ciudad de Mexico", 19.400, -99.100, 5)
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, far.Code)
}

func TestEventsByMagnitudeRangeHonorsLimitAndNilMagnitude(t *testing.T) {
	s := New()
	for i, mag := range []*float64{
		domain.Float64Ptr(4.0),
		nil,
		domain.Float64Ptr(5.0),
		domain.Float64Ptr(6.0),
		domain.Float64Ptr(9.9),
	} {
		require.NoError(t, s.SaveEventNode(context.Background(), graph.EventNode{
			Code:      string(rune('a' + i)),
			Magnitude: mag,
		}))
	}

	out, err := s.EventsByMagnitudeRange(context.Background(), 4, 7, 0)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	limited, err := s.EventsByMagnitudeRange(context.Background(), 4, 7, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
