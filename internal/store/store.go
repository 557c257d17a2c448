// Package store defines the durable event collection behind the ingestion
// pipeline and graph builder. The storage engine is an implementation detail;
// callers program against EventStore.
package store

import (
	"context"
	"errors"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
)

// ErrNotFound is returned when an event id does not exist.
var ErrNotFound = errors.New("event not found")

// EventStore persists seismic events. SaveBatch is a single unit of work:
// it either stores the whole batch or fails without partial writes, which is
// what lets the ingestion pipeline retry per record after a batch failure.
type EventStore interface {
	SaveBatch(ctx context.Context, events []domain.SeismicEvent) error
	Save(ctx context.Context, event domain.SeismicEvent) (int64, error)
	EventsAboveMagnitude(ctx context.Context, min float64) ([]domain.SeismicEvent, error)
	EventByID(ctx context.Context, id int64) (domain.SeismicEvent, error)
	CountEvents(ctx context.Context) (int64, error)
}
