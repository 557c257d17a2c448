// Command seismic runs the seismic catalog service: CSV ingestion, event
// queries, relationship graph materialization and export, and wave
// propagation simulation, all behind one HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/seismic-data-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/seismic-data-service/internal/adapter/kafka"
	"github.com/couchcryptid/seismic-data-service/internal/config"
	"github.com/couchcryptid/seismic-data-service/internal/graph"
	graphmemory "github.com/couchcryptid/seismic-data-service/internal/graph/memory"
	"github.com/couchcryptid/seismic-data-service/internal/ingest"
	"github.com/couchcryptid/seismic-data-service/internal/observability"
	"github.com/couchcryptid/seismic-data-service/internal/store"
	storememory "github.com/couchcryptid/seismic-data-service/internal/store/memory"
	"github.com/couchcryptid/seismic-data-service/internal/store/postgres"
	"github.com/couchcryptid/seismic-data-service/internal/wave"
)

// readiness adapts a ping function to the httpapi.ReadinessChecker interface.
type readiness func(ctx context.Context) error

func (r readiness) CheckReadiness(ctx context.Context) error { return r(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event store: Postgres when a DSN is configured, in-memory otherwise.
	var events store.EventStore
	ready := readiness(func(context.Context) error { return nil })
	if cfg.PostgresDSN != "" {
		pg, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		events = pg
		ready = readiness(pg.Ping)
		logger.Info("event store: postgres")
	} else {
		events = storememory.New()
		logger.Info("event store: in-memory")
	}

	// Optional Kafka sink for stored events (feature-flagged via KAFKA_ENABLED).
	var opts []ingest.Option
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		opts = append(opts, ingest.WithNotifier(writer))
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	pipeline := ingest.New(events, logger, metrics, cfg.BatchSize, opts...)

	graphStore := graphmemory.New()
	builder := graph.NewBuilder(graphStore, logger, metrics)
	exporter := graph.NewExporter(graphStore)

	srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.Deps{
		Ingester:   pipeline,
		Events:     events,
		Builder:    builder,
		GraphStore: graphStore,
		Exporter:   exporter,
		Simulator:  wave.New(nil),
		Ready:      ready,
		Logger:     logger,

		IngestTimeout: cfg.IngestTimeout,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
