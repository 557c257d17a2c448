// Package wave simulates seismic wave propagation from an epicenter. It is
// pure computation: no storage, and randomness only where station placement
// asks for it, behind an injectable source.
package wave

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
)

// Propagation velocities in km/s for the three modeled wave types.
const (
	PWaveVelocityKmS       = 6.0
	SWaveVelocityKmS       = 3.5
	SurfaceWaveVelocityKmS = 2.5
)

const (
	minStationDistanceKm = 100.0
	maxStationDistanceKm = 500.0
)

// timeEps tolerates float rounding when checking a grid time against the
// duration bound.
const timeEps = 1e-9

// Point is a geographic coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Step is the wavefront state at one instant after the event.
type Step struct {
	TimeSec         float64 `json:"timeSec"`
	PRadiusKm       float64 `json:"pRadiusKm"`
	SRadiusKm       float64 `json:"sRadiusKm"`
	SurfaceRadiusKm float64 `json:"surfaceRadiusKm"`
}

// Arrivals holds per-wave-type arrival times in seconds.
type Arrivals struct {
	PSec       float64 `json:"p"`
	SSec       float64 `json:"s"`
	SurfaceSec float64 `json:"surface"`
}

// Station is a synthetic seismic station with precomputed arrival times.
type Station struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Latitude     float64  `json:"lat"`
	Longitude    float64  `json:"lon"`
	DistanceKm   float64  `json:"distanceKm"`
	ArrivalTimes Arrivals `json:"arrivalTimes"`
}

// Simulate computes the wavefront radii at every interval from t=0 through
// the duration, inclusive. The sequence is deterministic given the same
// inputs.
func Simulate(epicenter Point, durationSec, intervalSec float64) ([]Step, error) {
	if durationSec < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %g", durationSec)
	}
	if intervalSec <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %g", intervalSec)
	}

	// Index-based stepping keeps every t on the k*interval grid; a running
	// float sum drifts and can drop the final step at t = duration.
	steps := make([]Step, 0, int(durationSec/intervalSec)+1)
	for i := 0; ; i++ {
		t := float64(i) * intervalSec
		if t > durationSec+timeEps {
			break
		}
		steps = append(steps, Step{
			TimeSec:         t,
			PRadiusKm:       PWaveVelocityKmS * t,
			SRadiusKm:       SWaveVelocityKmS * t,
			SurfaceRadiusKm: SurfaceWaveVelocityKmS * t,
		})
	}
	return steps, nil
}

// Distance returns the great-circle distance between two points in km.
func Distance(a, b Point) float64 {
	return domain.Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// ArrivalTimes returns when each wave type reaches the station.
func ArrivalTimes(epicenter, station Point) Arrivals {
	return arrivalsForDistance(Distance(epicenter, station))
}

func arrivalsForDistance(distanceKm float64) Arrivals {
	return Arrivals{
		PSec:       distanceKm / PWaveVelocityKmS,
		SSec:       distanceKm / SWaveVelocityKmS,
		SurfaceSec: distanceKm / SurfaceWaveVelocityKmS,
	}
}

// Simulator owns the randomness used for station placement.
type Simulator struct {
	rng *rand.Rand
}

// New creates a Simulator. A nil rng falls back to a time-seeded source.
func New(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{rng: rng}
}

// GenerateStations places count synthetic stations around the epicenter at a
// uniformly random bearing and a distance drawn from [100, 500) km. The
// coordinate offsets use a flat-earth approximation (one degree of latitude
// per 111 km, longitude scaled by cos of latitude), so the reported
// great-circle DistanceKm differs slightly from the drawn distance.
func (s *Simulator) GenerateStations(epicenter Point, count int) []Station {
	stations := make([]Station, 0, count)
	for i := 0; i < count; i++ {
		bearing := s.rng.Float64() * 2 * math.Pi
		drawnKm := minStationDistanceKm + s.rng.Float64()*(maxStationDistanceKm-minStationDistanceKm)

		latOffset := drawnKm * math.Cos(bearing) / 111.0
		lonOffset := drawnKm * math.Sin(bearing) / (111.0 * math.Cos(epicenter.Latitude*math.Pi/180))

		loc := Point{
			Latitude:  epicenter.Latitude + latOffset,
			Longitude: epicenter.Longitude + lonOffset,
		}
		distanceKm := Distance(epicenter, loc)

		stations = append(stations, Station{
			ID:           i + 1,
			Name:         fmt.Sprintf("Station %d", i+1),
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			DistanceKm:   distanceKm,
			ArrivalTimes: arrivalsForDistance(distanceKm),
		})
	}
	return stations
}
