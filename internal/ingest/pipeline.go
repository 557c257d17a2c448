// Package ingest streams seismic-catalog CSV files into the event store.
//
// Ingestion is best-effort: field-level problems are repaired by the domain
// sanitizer, a failed bulk save retries record by record, and only a fatal
// stream-read error aborts the run.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/observability"
)

// EventSaver is the slice of the event store the pipeline needs. SaveBatch is
// all-or-nothing; Save persists a single record during fallback.
type EventSaver interface {
	SaveBatch(ctx context.Context, events []domain.SeismicEvent) error
	Save(ctx context.Context, event domain.SeismicEvent) (int64, error)
}

// Notifier receives successfully stored events, e.g. a Kafka sink. Notifier
// failures are logged and never fail the run.
type Notifier interface {
	PublishStored(ctx context.Context, events []domain.SeismicEvent) error
}

// Summary reports the outcome of one ingestion run.
type Summary struct {
	RowsSeen     int            `json:"rowsSeen"`
	RowsSaved    int            `json:"rowsSaved"`
	RowsRepaired int            `json:"rowsRepaired"`
	ErrorsByKind map[string]int `json:"errorsByKind"`
}

// Pipeline ingests one CSV stream per Run call. Runs are sequential; no
// concurrent writers are assumed within a run.
type Pipeline struct {
	saver     EventSaver
	notifier  Notifier
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithNotifier attaches a sink notified with each successfully stored batch.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// New creates a Pipeline. A batchSize of 0 or less falls back to the
// catalog default of 500.
func New(saver EventSaver, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	if batchSize <= 0 {
		batchSize = 500
	}
	p := &Pipeline{
		saver:     saver,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run streams a CSV catalog with a header row, sanitizes each record, and
// persists batches with bulk-then-per-record fallback. Per-record problems
// never abort the run; only an unreadable stream or context cancellation
// returns an error.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (Summary, error) {
	summary := Summary{ErrorsByKind: make(map[string]int)}

	p.metrics.IngestRunning.Set(1)
	defer p.metrics.IngestRunning.Set(0)
	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return summary, fmt.Errorf("read csv header: %w", err)
	}
	columns := normalizeHeader(header)
	p.logger.Info("ingestion started", "columns", columns, "batch_size", p.batchSize)

	batch := make([]domain.SeismicEvent, 0, p.batchSize)

	for {
		if ctx.Err() != nil {
			return summary, fmt.Errorf("ingestion cancelled: %w", ctx.Err())
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// A row too malformed to tokenize is dropped, not fatal.
			summary.RowsSeen++
			p.countError(summary, domain.ErrKindGeneral)
			p.logger.Warn("unparseable csv row, skipping", "line", parseErr.Line, "error", err)
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("read csv stream: %w", err)
		}

		summary.RowsSeen++
		p.metrics.RowsSeen.Inc()

		ev, errs := domain.SanitizeRecord(rowToRecord(columns, row))
		if len(errs) > 0 {
			summary.RowsRepaired++
		}
		for kind, n := range errs {
			summary.ErrorsByKind[kind] += n
			p.metrics.FieldRepairs.WithLabelValues(kind).Add(float64(n))
		}

		batch = append(batch, ev)
		if len(batch) >= p.batchSize {
			summary.RowsSaved += p.flush(ctx, batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		summary.RowsSaved += p.flush(ctx, batch)
	}

	p.logger.Info("ingestion completed",
		"rows_seen", summary.RowsSeen,
		"rows_saved", summary.RowsSaved,
		"rows_repaired", summary.RowsRepaired,
		"errors_by_kind", summary.ErrorsByKind,
		"duration", time.Since(start),
	)
	return summary, nil
}

// flush persists one batch: a single bulk save, then per-record fallback when
// the bulk save fails. Records that still fail individually are dropped and
// logged. Returns the number of records stored.
func (p *Pipeline) flush(ctx context.Context, batch []domain.SeismicEvent) int {
	start := time.Now()
	defer func() {
		p.metrics.BatchSaveDuration.Observe(time.Since(start).Seconds())
	}()

	err := p.saver.SaveBatch(ctx, batch)
	if err == nil {
		p.metrics.RowsSaved.Add(float64(len(batch)))
		p.notify(ctx, batch)
		return len(batch)
	}
	p.logger.Error("bulk save failed, retrying per record", "batch_size", len(batch), "error", err)
	p.metrics.BatchFallbacks.Inc()

	stored := make([]domain.SeismicEvent, 0, len(batch))
	for _, ev := range batch {
		if _, err := p.saver.Save(ctx, ev); err != nil {
			p.logger.Warn("record dropped after fallback save failed",
				"date", ev.Date.Format("2006-01-02"),
				"magnitude", ev.MagnitudeValue(),
				"latitude", ev.Latitude,
				"longitude", ev.Longitude,
				"error", err,
			)
			p.metrics.RowsDropped.Inc()
			continue
		}
		stored = append(stored, ev)
	}
	p.logger.Info("fallback saves completed", "attempted", len(batch), "saved", len(stored))
	p.metrics.RowsSaved.Add(float64(len(stored)))
	p.notify(ctx, stored)
	return len(stored)
}

func (p *Pipeline) notify(ctx context.Context, events []domain.SeismicEvent) {
	if p.notifier == nil || len(events) == 0 {
		return
	}
	if err := p.notifier.PublishStored(ctx, events); err != nil {
		p.logger.Warn("sink publish failed", "events", len(events), "error", err)
		p.metrics.SinkErrors.Inc()
		return
	}
	p.metrics.SinkPublished.Add(float64(len(events)))
}

func (p *Pipeline) countError(s Summary, kind string) {
	s.ErrorsByKind[kind]++
	p.metrics.FieldRepairs.WithLabelValues(kind).Inc()
}

// normalizeHeader lower-cases and trims column names so lookups are
// case-insensitive and tolerant of stray whitespace.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		out[i] = strings.ToLower(strings.TrimSpace(name))
	}
	return out
}

// rowToRecord zips header columns with row values. Extra values are ignored;
// missing trailing columns read as empty.
func rowToRecord(columns, row []string) domain.Record {
	rec := make(domain.Record, len(columns))
	for i, col := range columns {
		if i < len(row) {
			rec[col] = row[i]
		}
	}
	return rec
}
