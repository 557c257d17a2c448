package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 3, 15, 16, 30, 0, 0, time.UTC)
	event := domain.SeismicEvent{
		ID:          42,
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Time:        "10:30:00",
		Magnitude:   domain.Float64Ptr(7.2),
		Latitude:    16.0,
		Longitude:   -98.0,
		DepthKm:     12.5,
		LocationRef: "costa de Guerrero",
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.Contains(t, string(msg.Value), `"location_ref":"costa de Guerrero"`)
	assert.Contains(t, string(msg.Value), `"magnitude":7.2`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "magnitude", msg.Headers[0].Key)
	assert.Equal(t, []byte("7.2"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessageNilMagnitudeHeaderIsZero(t *testing.T) {
	msg, err := serializeToMessage(domain.SeismicEvent{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte("0"), msg.Headers[0].Value)
}
