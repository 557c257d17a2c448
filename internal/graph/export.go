package graph

import (
	"context"
	"fmt"
	"strconv"
)

// VisNode is a generic node for external graph visualizers (vis.js shape).
type VisNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
	Title string `json:"title,omitempty"`
}

// VisEdge is a generic labeled edge for external graph visualizers.
type VisEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// VisData is the node/edge set handed to external visualizers.
type VisData struct {
	Nodes []VisNode `json:"nodes"`
	Edges []VisEdge `json:"edges"`
}

// Exporter maps persisted graph state into the generic visualization shape.
// It only surfaces relationships the Builder already stored; nothing is
// synthesized during export.
type Exporter struct {
	store Store
}

// NewExporter creates an Exporter.
func NewExporter(store Store) *Exporter {
	return &Exporter{store: store}
}

// Visualization selects events in the magnitude range (up to limit), the
// locations those events reference, and every persisted relationship among
// them.
func (e *Exporter) Visualization(ctx context.Context, minMag, maxMag float64, limit int) (VisData, error) {
	events, err := e.store.EventsByMagnitudeRange(ctx, minMag, maxMag, limit)
	if err != nil {
		return VisData{}, fmt.Errorf("select events: %w", err)
	}

	codes := make([]string, 0, len(events))
	for _, ev := range events {
		codes = append(codes, ev.Code)
	}

	edges, err := e.store.EdgesFrom(ctx, codes)
	if err != nil {
		return VisData{}, fmt.Errorf("select edges: %w", err)
	}

	// Only locations actually referenced by the selected events are emitted.
	var locCodes []string
	for _, edge := range edges {
		if edge.Kind == EdgeOccurredAt {
			locCodes = append(locCodes, edge.To)
		}
	}
	locations, err := e.store.LocationsByCodes(ctx, locCodes)
	if err != nil {
		return VisData{}, fmt.Errorf("select locations: %w", err)
	}

	data := VisData{
		Nodes: make([]VisNode, 0, len(events)+len(locations)),
		Edges: make([]VisEdge, 0, len(edges)),
	}

	for _, ev := range events {
		mag := formatMagnitude(ev.Magnitude)
		data.Nodes = append(data.Nodes, VisNode{
			ID:    eventNodeID(ev.Code),
			Label: "Event " + mag,
			Group: "event",
			Title: fmt.Sprintf("Date: %s, Magnitude: %s", ev.Date.Format("2006-01-02"), mag),
		})
	}
	for _, loc := range locations {
		data.Nodes = append(data.Nodes, VisNode{
			ID:    locationNodeID(loc.Code),
			Label: loc.Name,
			Group: "location",
		})
	}

	for _, edge := range edges {
		to := eventNodeID(edge.To)
		if edge.Kind == EdgeOccurredAt {
			to = locationNodeID(edge.To)
		}
		data.Edges = append(data.Edges, VisEdge{
			From:  eventNodeID(edge.From),
			To:    to,
			Label: string(edge.Kind),
		})
	}

	return data, nil
}

func eventNodeID(code string) string    { return "event_" + code }
func locationNodeID(code string) string { return "location_" + code }

func formatMagnitude(m *float64) string {
	if m == nil {
		return "?"
	}
	return strconv.FormatFloat(*m, 'f', -1, 64)
}
