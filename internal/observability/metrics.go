package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and graph builder.
type Metrics struct {
	RowsSeen       prometheus.Counter
	RowsSaved      prometheus.Counter
	RowsDropped    prometheus.Counter
	FieldRepairs   *prometheus.CounterVec // label: kind (fecha_invalida, magnitud_invalida, ...)
	BatchFallbacks prometheus.Counter
	IngestRunning  prometheus.Gauge

	BatchSaveDuration prometheus.Histogram

	// Graph materialization metrics.
	GraphEventsBuilt prometheus.Counter
	GraphEdges       *prometheus.CounterVec // label: kind (OCCURRED_AT, NEARBY, SIMILAR_MAGNITUDE)

	// Kafka sink metrics.
	SinkPublished prometheus.Counter
	SinkErrors    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsSeen,
		m.RowsSaved,
		m.RowsDropped,
		m.FieldRepairs,
		m.BatchFallbacks,
		m.IngestRunning,
		m.BatchSaveDuration,
		m.GraphEventsBuilt,
		m.GraphEdges,
		m.SinkPublished,
		m.SinkErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "ingest_rows_seen_total",
			Help:      "Total CSV data rows read across ingestion runs.",
		}),
		RowsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "ingest_rows_saved_total",
			Help:      "Total rows persisted to the event store.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "ingest_rows_dropped_total",
			Help:      "Rows that failed the per-record fallback save and were dropped.",
		}),
		FieldRepairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "ingest_field_repairs_total",
			Help:      "Field-level repairs applied during sanitization, by error kind.",
		}, []string{"kind"}),
		BatchFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "ingest_batch_fallbacks_total",
			Help:      "Bulk saves that failed and fell back to per-record saves.",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "seismic",
			Name:      "ingest_running",
			Help:      "1 while an ingestion run is in progress.",
		}),
		BatchSaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seismic",
			Name:      "ingest_batch_save_duration_seconds",
			Help:      "Duration of a bulk batch save, including fallback saves.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GraphEventsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "graph_events_built_total",
			Help:      "Events materialized into the relationship graph.",
		}),
		GraphEdges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "graph_edges_total",
			Help:      "Relationship edges persisted, by kind.",
		}, []string{"kind"}),
		SinkPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "sink_events_published_total",
			Help:      "Stored events published to the Kafka sink topic.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seismic",
			Name:      "sink_publish_errors_total",
			Help:      "Failed Kafka sink publishes (non-fatal to ingestion).",
		}),
	}
}
