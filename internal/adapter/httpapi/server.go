// Package httpapi exposes the seismic catalog over HTTP: CSV upload,
// event queries, graph materialization and export, wave propagation, plus
// health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
	"github.com/couchcryptid/seismic-data-service/internal/graph"
	"github.com/couchcryptid/seismic-data-service/internal/ingest"
	"github.com/couchcryptid/seismic-data-service/internal/store"
	"github.com/couchcryptid/seismic-data-service/internal/wave"
)

const (
	defaultMaterializeMinMagnitude = 7.0
	defaultVisualizationMaxMag     = 10.0
	defaultVisualizationLimit      = 100
	defaultStationCount            = 5
	maxUploadBytes                 = 64 << 20
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Ingester runs the CSV ingestion pipeline over a stream.
type Ingester interface {
	Run(ctx context.Context, r io.Reader) (ingest.Summary, error)
}

// GraphBuilder materializes stored events into the relationship graph.
type GraphBuilder interface {
	BuildAll(ctx context.Context, events []domain.SeismicEvent) error
}

// GraphExporter renders the persisted graph for external visualizers.
type GraphExporter interface {
	Visualization(ctx context.Context, minMag, maxMag float64, limit int) (graph.VisData, error)
}

// Deps collects the collaborators the API surfaces.
type Deps struct {
	Ingester   Ingester
	Events     store.EventStore
	Builder    GraphBuilder
	GraphStore graph.Store
	Exporter   GraphExporter
	Simulator  *wave.Simulator
	Ready      ReadinessChecker
	Logger     *slog.Logger

	// IngestTimeout bounds one upload's ingestion run. 0 means unbounded.
	IngestTimeout time.Duration
}

// Server exposes the seismic catalog HTTP API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: deps.Logger,
	}

	mux.HandleFunc("POST /api/events/upload", s.handleUpload)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("POST /api/graph/materialize", s.handleMaterialize)
	mux.HandleFunc("GET /api/graph/events", s.handleGraphEvents)
	mux.HandleFunc("GET /api/graph/locations", s.handleGraphLocations)
	mux.HandleFunc("GET /api/graph/visualization", s.handleVisualization)

	mux.HandleFunc("POST /api/propagation/calculate", s.handlePropagation)
	mux.HandleFunc("GET /api/propagation/stations", s.handleStations)
	mux.HandleFunc("GET /api/propagation/arrival-times", s.handleArrivalTimes)
	mux.HandleFunc("GET /api/propagation/distance", s.handleDistance)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// uploadResponse reports an ingestion run plus the resulting store total.
type uploadResponse struct {
	Status       string         `json:"status"`
	RowsSeen     int            `json:"rowsSeen"`
	RowsSaved    int            `json:"rowsSaved"`
	RowsRepaired int            `json:"rowsRepaired"`
	ErrorsByKind map[string]int `json:"errorsByKind"`
	TotalInStore int64          `json:"totalInStore"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := uploadStream(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer body.Close()

	ctx := r.Context()
	if s.deps.IngestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.IngestTimeout)
		defer cancel()
	}

	summary, err := s.deps.Ingester.Run(ctx, body)
	if err != nil {
		s.logger.Error("csv upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	total, err := s.deps.Events.CountEvents(r.Context())
	if err != nil {
		s.logger.Error("count events failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:       "ok",
		RowsSeen:     summary.RowsSeen,
		RowsSaved:    summary.RowsSaved,
		RowsRepaired: summary.RowsRepaired,
		ErrorsByKind: summary.ErrorsByKind,
		TotalInStore: total,
	})
}

// uploadStream accepts either a multipart "file" part or a raw CSV body.
func uploadStream(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file part: %w", err)
		}
		return file, nil
	}
	if r.ContentLength == 0 {
		return nil, errors.New("empty request body")
	}
	return http.MaxBytesReader(nil, r.Body, maxUploadBytes), nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	minMag, err := floatParam(r, "minMagnitude", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	events, err := s.deps.Events.EventsAboveMagnitude(r.Context(), minMag)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if events == nil {
		events = []domain.SeismicEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	minMag, err := floatParam(r, "minMagnitude", defaultMaterializeMinMagnitude)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	events, err := s.deps.Events.EventsAboveMagnitude(r.Context(), minMag)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := s.deps.Builder.BuildAll(r.Context(), events); err != nil {
		s.logger.Error("graph materialization failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"events": len(events),
	})
}

func (s *Server) handleGraphEvents(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.deps.GraphStore.AllEventNodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if nodes == nil {
		nodes = []graph.EventNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleGraphLocations(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.deps.GraphStore.AllLocationNodes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if nodes == nil {
		nodes = []graph.LocationNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	minMag, err := floatParam(r, "minMagnitude", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	maxMag, err := floatParam(r, "maxMagnitude", defaultVisualizationMaxMag)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit", defaultVisualizationLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := s.deps.Exporter.Visualization(r.Context(), minMag, maxMag, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// propagationRequest describes a simulation. When EventID is set the event
// is loaded from the store and the ad hoc fields are ignored.
type propagationRequest struct {
	EventID         *int64   `json:"eventId"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Magnitude       *float64 `json:"magnitude"`
	Depth           float64  `json:"depth"`
	DurationSeconds float64  `json:"durationSeconds"`
	IntervalSeconds float64  `json:"intervalSeconds"`
	StationCount    int      `json:"stationCount"`
}

// propagationEvent echoes the effective event a simulation ran against, so
// callers can tell which coordinates and magnitude were used.
type propagationEvent struct {
	EventID   *int64   `json:"eventId,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Magnitude *float64 `json:"magnitude"`
	DepthKm   float64  `json:"depthKm"`
}

type propagationResponse struct {
	Event     propagationEvent `json:"event"`
	TimeSteps []wave.Step      `json:"timeSteps"`
	Stations  []wave.Station   `json:"stations"`
}

func (s *Server) handlePropagation(w http.ResponseWriter, r *http.Request) {
	var req propagationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	effective := propagationEvent{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Magnitude: req.Magnitude,
		DepthKm:   req.Depth,
	}
	if req.EventID != nil {
		ev, err := s.deps.Events.EventByID(r.Context(), *req.EventID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("event %d not found", *req.EventID))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		effective = propagationEvent{
			EventID:   req.EventID,
			Latitude:  ev.Latitude,
			Longitude: ev.Longitude,
			Magnitude: ev.Magnitude,
			DepthKm:   ev.DepthKm,
		}
	}

	epicenter := wave.Point{Latitude: effective.Latitude, Longitude: effective.Longitude}
	steps, err := wave.Simulate(epicenter, req.DurationSeconds, req.IntervalSeconds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	count := req.StationCount
	if count <= 0 {
		count = defaultStationCount
	}

	writeJSON(w, http.StatusOK, propagationResponse{
		Event:     effective,
		TimeSteps: steps,
		Stations:  s.deps.Simulator.GenerateStations(epicenter, count),
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	lat, err := requiredFloatParam(r, "latitude")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lon, err := requiredFloatParam(r, "longitude")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	count, err := intParam(r, "count", defaultStationCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stations := s.deps.Simulator.GenerateStations(wave.Point{Latitude: lat, Longitude: lon}, count)
	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleArrivalTimes(w http.ResponseWriter, r *http.Request) {
	eqLat, err := requiredFloatParam(r, "eqLat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	eqLon, err := requiredFloatParam(r, "eqLon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stLat, err := requiredFloatParam(r, "stationLat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stLon, err := requiredFloatParam(r, "stationLon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	arrivals := wave.ArrivalTimes(
		wave.Point{Latitude: eqLat, Longitude: eqLon},
		wave.Point{Latitude: stLat, Longitude: stLon},
	)
	writeJSON(w, http.StatusOK, arrivals)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	lat1, err := requiredFloatParam(r, "lat1")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lon1, err := requiredFloatParam(r, "lon1")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lat2, err := requiredFloatParam(r, "lat2")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lon2, err := requiredFloatParam(r, "lon2")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	d := wave.Distance(
		wave.Point{Latitude: lat1, Longitude: lon1},
		wave.Point{Latitude: lat2, Longitude: lon2},
	)
	writeJSON(w, http.StatusOK, map[string]float64{"distanceKm": d})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.deps.Ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func requiredFloatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
