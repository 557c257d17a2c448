package wave

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateProducesMonotonicWavefronts(t *testing.T) {
	epicenter := Point{Latitude: 16.0, Longitude: -98.0}

	steps, err := Simulate(epicenter, 10, 2)
	require.NoError(t, err)
	require.Len(t, steps, 6)

	assert.Equal(t, Step{}, steps[0])
	for i := 1; i < len(steps); i++ {
		prev, cur := steps[i-1], steps[i]
		assert.Greater(t, cur.PRadiusKm, prev.PRadiusKm)
		assert.Greater(t, cur.SRadiusKm, prev.SRadiusKm)
		assert.Greater(t, cur.SurfaceRadiusKm, prev.SurfaceRadiusKm)
		// P outruns S, S outruns surface waves.
		assert.Greater(t, cur.PRadiusKm, cur.SRadiusKm)
		assert.Greater(t, cur.SRadiusKm, cur.SurfaceRadiusKm)
	}

	last := steps[len(steps)-1]
	assert.InDelta(t, 10.0, last.TimeSec, 1e-9)
	assert.InDelta(t, 60.0, last.PRadiusKm, 1e-9)
	assert.InDelta(t, 35.0, last.SRadiusKm, 1e-9)
	assert.InDelta(t, 25.0, last.SurfaceRadiusKm, 1e-9)
}

func TestSimulateRejectsInvalidInputs(t *testing.T) {
	epicenter := Point{}

	_, err := Simulate(epicenter, -1, 1)
	assert.Error(t, err)

	_, err = Simulate(epicenter, 10, 0)
	assert.Error(t, err)

	_, err = Simulate(epicenter, 10, -2)
	assert.Error(t, err)
}

func TestSimulateFractionalIntervalIncludesFinalStep(t *testing.T) {
	// 0.1+0.1+0.1 > 0.3 in float64; the t=0.3 step must not be lost to
	// accumulation error.
	steps, err := Simulate(Point{}, 0.3, 0.1)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.InDelta(t, 0.3, steps[3].TimeSec, 1e-9)

	// Every step sits on the k*interval grid.
	for i, st := range steps {
		assert.InDelta(t, float64(i)*0.1, st.TimeSec, 1e-9)
	}
}

func TestSimulateZeroDurationYieldsSingleStep(t *testing.T) {
	steps, err := Simulate(Point{}, 0, 5)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, Step{}, steps[0])
}

func TestDistanceOneDegreeOfLatitude(t *testing.T) {
	d := Distance(Point{0, 0}, Point{1, 0})
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestArrivalTimesOrdering(t *testing.T) {
	arr := ArrivalTimes(Point{16.0, -98.0}, Point{17.0, -98.0})

	assert.Greater(t, arr.SSec, arr.PSec)
	assert.Greater(t, arr.SurfaceSec, arr.SSec)
	// distance/velocity for each wave type.
	d := Distance(Point{16.0, -98.0}, Point{17.0, -98.0})
	assert.InDelta(t, d/6.0, arr.PSec, 1e-9)
	assert.InDelta(t, d/3.5, arr.SSec, 1e-9)
	assert.InDelta(t, d/2.5, arr.SurfaceSec, 1e-9)
}

func TestGenerateStationsPlacementBounds(t *testing.T) {
	sim := New(rand.New(rand.NewSource(42)))
	epicenter := Point{Latitude: 16.0, Longitude: -98.0}

	stations := sim.GenerateStations(epicenter, 50)
	require.Len(t, stations, 50)

	for i, st := range stations {
		assert.Equal(t, i+1, st.ID)
		assert.Equal(t, fmt.Sprintf("Station %d", i+1), st.Name)
		// The flat-earth placement wobbles around the drawn distance, so the
		// bounds get a small margin.
		assert.GreaterOrEqual(t, st.DistanceKm, 95.0)
		assert.LessOrEqual(t, st.DistanceKm, 510.0)
		assert.InDelta(t, st.DistanceKm/6.0, st.ArrivalTimes.PSec, 1e-9)
	}
}

func TestStationJSONShape(t *testing.T) {
	sim := New(rand.New(rand.NewSource(3)))
	stations := sim.GenerateStations(Point{Latitude: 16.0, Longitude: -98.0}, 1)
	require.Len(t, stations, 1)

	data, err := json.Marshal(stations[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"id", "name", "lat", "lon", "distanceKm", "arrivalTimes"} {
		assert.Contains(t, decoded, key)
	}
	times, ok := decoded["arrivalTimes"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"p", "s", "surface"} {
		assert.Contains(t, times, key)
	}
}

func TestGenerateStationsDeterministicWithSeededSource(t *testing.T) {
	epicenter := Point{Latitude: 16.0, Longitude: -98.0}

	first := New(rand.New(rand.NewSource(7))).GenerateStations(epicenter, 5)
	second := New(rand.New(rand.NewSource(7))).GenerateStations(epicenter, 5)
	assert.Equal(t, first, second)

	different := New(rand.New(rand.NewSource(8))).GenerateStations(epicenter, 5)
	assert.NotEqual(t, first, different)
}

func TestNewWithNilSourceStillGenerates(t *testing.T) {
	stations := New(nil).GenerateStations(Point{}, 3)
	require.Len(t, stations, 3)
}
