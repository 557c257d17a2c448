// Package postgres implements store.EventStore on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/store"
)

// Schema is created on connect; exports from different catalog eras are
// loaded into the same table.
const initSQL = `
CREATE TABLE IF NOT EXISTS seismic_events (
    id           BIGSERIAL PRIMARY KEY,
    date         DATE NOT NULL,
    time         TEXT NOT NULL DEFAULT '',
    magnitude    DOUBLE PRECISION,
    latitude     DOUBLE PRECISION NOT NULL,
    longitude    DOUBLE PRECISION NOT NULL,
    depth_km     DOUBLE PRECISION NOT NULL,
    location_ref TEXT NOT NULL DEFAULT '',
    date_utc     DATE NOT NULL,
    time_utc     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT '',
    processed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS seismic_events_magnitude_idx ON seismic_events (magnitude);
`

const insertSQL = `
INSERT INTO seismic_events
    (date, time, magnitude, latitude, longitude, depth_km, location_ref, date_utc, time_utc, status, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const selectCols = `
id, date, time, magnitude, latitude, longitude, depth_km, location_ref, date_utc, time_utc, status, processed_at
`

// Store is a Postgres-backed EventStore.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.EventStore = (*Store)(nil)

// Connect parses the DSN, establishes a pool, pings, and runs the init SQL.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, initSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports store reachability, used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SaveBatch inserts all events inside one transaction so a constraint
// violation rolls back the whole batch and the pipeline can retry per record.
func (s *Store) SaveBatch(ctx context.Context, events []domain.SeismicEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(insertSQL, insertArgs(ev)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save batch of %d: %w", len(events), err)
	}
	return tx.Commit(ctx)
}

// Save inserts one event and returns its assigned id.
func (s *Store) Save(ctx context.Context, ev domain.SeismicEvent) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, insertSQL+" RETURNING id", insertArgs(ev)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save event: %w", err)
	}
	return id, nil
}

// EventsAboveMagnitude returns events with magnitude strictly greater than min.
func (s *Store) EventsAboveMagnitude(ctx context.Context, min float64) ([]domain.SeismicEvent, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+selectCols+" FROM seismic_events WHERE magnitude > $1 ORDER BY id", min)
	if err != nil {
		return nil, fmt.Errorf("query events above magnitude: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// EventByID returns the stored event or store.ErrNotFound.
func (s *Store) EventByID(ctx context.Context, id int64) (domain.SeismicEvent, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+selectCols+" FROM seismic_events WHERE id = $1", id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SeismicEvent{}, store.ErrNotFound
	}
	if err != nil {
		return domain.SeismicEvent{}, fmt.Errorf("query event by id: %w", err)
	}
	return ev, nil
}

// CountEvents returns the total number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM seismic_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func insertArgs(ev domain.SeismicEvent) []any {
	return []any{
		ev.Date, ev.Time, ev.Magnitude, ev.Latitude, ev.Longitude, ev.DepthKm,
		ev.LocationRef, ev.DateUTC, ev.TimeUTC, ev.Status, ev.ProcessedAt,
	}
}

func scanEvent(row pgx.Row) (domain.SeismicEvent, error) {
	var ev domain.SeismicEvent
	err := row.Scan(
		&ev.ID, &ev.Date, &ev.Time, &ev.Magnitude, &ev.Latitude, &ev.Longitude,
		&ev.DepthKm, &ev.LocationRef, &ev.DateUTC, &ev.TimeUTC, &ev.Status, &ev.ProcessedAt,
	)
	return ev, err
}

func scanEvents(rows pgx.Rows) ([]domain.SeismicEvent, error) {
	var out []domain.SeismicEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
