package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expectedKm             float64
		tolerance              float64
	}{
		{"one degree of longitude at the equator", 0, 0, 0, 1, 111.19, 0.1},
		{"same point", -33.45, -70.66, -33.45, -70.66, 0, 1e-9},
		{"santiago to valparaiso", -33.45, -70.66, -33.05, -71.62, 100.5, 2},
		{"antipodal-ish", 0, 0, 0, 180, 20015, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expectedKm, d, tt.tolerance)
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := Haversine(-29.95, -71.33, -33.45, -70.66)
	b := Haversine(-33.45, -70.66, -29.95, -71.33)
	assert.Equal(t, a, b)
}
