// Package domain models national seismic-catalog records.
//
// # Data Source
//
// Catalog rows arrive as CSV exports from the national seismological service.
// Files carry a header row with Spanish column names (fecha, hora, magnitud,
// latitud, longitud, profundidad, referencia de localizacion, fecha utc,
// hora utc, estatus), matched case-insensitively because exports from
// different years disagree on casing and surrounding whitespace.
//
// # Catalog Conventions
//
// Date format:
//
//	YYYY-MM-DD for both "fecha" (local) and "fecha utc". Older exports contain
//	unparseable dates; the local date falls back to today and the UTC date
//	falls back to the local date. A record is never dropped for a date alone.
//
// Magnitude encoding (inconsistent across catalog eras):
//
//	Decimal point:  "7.5"
//	Decimal comma:  "7,5"  (European notation)
//	Unit suffixes:  "M:5.2°", "5.2 Mw"; junk characters are stripped
//	Missing point:  "75" = 7.5; values above 10 are divided by 10 until they
//	                fit, treating them as decimal-placement slips. The largest
//	                magnitude ever instrumentally recorded is 9.5 (Valdivia,
//	                1960), so a catalog value above 10 is always an encoding
//	                error.
//	Negative sign:  absolute value is taken; magnitudes are unsigned.
//	Empty/garbage:  0.0 (unmeasured sentinel).
//
// See [ParseMagnitude]. Relationship building downstream keys off the
// corrected value, so the repair order is load-bearing.
//
// Coordinates and depth:
//
//	Plain floats. Unparseable values become 0.0 and are counted per error
//	kind (latitud_invalida, longitud_invalida, profundidad_invalida).
//
// Free-text fields:
//
//	"hora", "hora utc", "estatus" and "referencia de localizacion" default to
//	the empty string when absent. The location reference is the human-readable
//	place description ("23 km al SUR de Coquimbo") later deduplicated into
//	graph location nodes by coordinate proximity, not by text.
//
// # Error Kinds
//
// Field repairs are tallied under the error-kind keys the legacy catalog
// tooling established (fecha_invalida, magnitud_invalida, ...). Ingestion
// summaries expose the tally; individual repairs never fail a record.
package domain
