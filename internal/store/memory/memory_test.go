package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/store"
)

func TestSaveAssignsSequentialIDs(t *testing.T) {
	s := New()

	first, err := s.Save(context.Background(), domain.SeismicEvent{})
	require.NoError(t, err)
	second, err := s.Save(context.Background(), domain.SeismicEvent{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	require.NoError(t, s.SaveBatch(context.Background(), make([]domain.SeismicEvent, 3)))

	n, err := s.CountEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	ev, err := s.EventByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), ev.ID)
}

func TestEventByIDNotFound(t *testing.T) {
	s := New()
	_, err := s.EventByID(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEventsAboveMagnitudeIsStrict(t *testing.T) {
	s := New()
	for _, mag := range []*float64{domain.Float64Ptr(7.0), domain.Float64Ptr(7.2), nil} {
		_, err := s.Save(context.Background(), domain.SeismicEvent{Magnitude: mag})
		require.NoError(t, err)
	}

	out, err := s.EventsAboveMagnitude(context.Background(), 7.0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 7.2, out[0].MagnitudeValue())
}
