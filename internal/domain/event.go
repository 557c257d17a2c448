package domain

import "time"

// Column names recognized in catalog CSV files, matched case-insensitively.
// The national seismic service publishes its catalog with Spanish headers.
const (
	ColDate        = "fecha"
	ColTime        = "hora"
	ColMagnitude   = "magnitud"
	ColLatitude    = "latitud"
	ColLongitude   = "longitud"
	ColDepth       = "profundidad"
	ColLocationRef = "referencia de localizacion"
	ColDateUTC     = "fecha utc"
	ColTimeUTC     = "hora utc"
	ColStatus      = "estatus"
)

// Error-kind keys reported in ingestion summaries. Kept identical to the
// upstream catalog tooling so dashboards built on its summaries keep working.
const (
	ErrKindDate      = "fecha_invalida"
	ErrKindMagnitude = "magnitud_invalida"
	ErrKindLatitude  = "latitud_invalida"
	ErrKindLongitude = "longitud_invalida"
	ErrKindDepth     = "profundidad_invalida"
	ErrKindGeneral   = "error_general"
)

// SeismicEvent is one catalog record after field repair. Events are created
// by the ingestion pipeline and never updated in place.
type SeismicEvent struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Magnitude   *float64  `json:"magnitude"` // nil means absent, distinct from 0.0
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	DepthKm     float64   `json:"depth_km"`
	LocationRef string    `json:"location_ref"`
	DateUTC     time.Time `json:"date_utc"`
	TimeUTC     string    `json:"time_utc"`
	Status      string    `json:"status"`

	ProcessedAt time.Time `json:"processed_at"`
}

// MagnitudeValue returns the magnitude or 0 when absent.
func (e SeismicEvent) MagnitudeValue() float64 {
	if e.Magnitude == nil {
		return 0
	}
	return *e.Magnitude
}

// Float64Ptr is a convenience for building events with a literal magnitude.
func Float64Ptr(v float64) *float64 { return &v }
