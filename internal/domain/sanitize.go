package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the catalog date format for both local and UTC dates.
const dateLayout = "2006-01-02"

// magnitudeJunkRe strips everything that cannot be part of a decimal number.
var magnitudeJunkRe = regexp.MustCompile(`[^0-9.-]`)

// Record is one raw CSV row keyed by lower-cased, trimmed column name.
type Record map[string]string

// Get returns the trimmed value for a column, or "" when the column is absent.
func (r Record) Get(col string) string {
	return strings.TrimSpace(r[strings.ToLower(col)])
}

// SanitizeRecord builds a SeismicEvent from a raw catalog row, repairing
// malformed fields instead of rejecting the record. Every field ends up
// populated: bad dates fall back to today (local) or the local date (UTC),
// bad numerics fall back to zero. It never fails; repairs are reported as
// error-kind counts for the ingestion summary.
func SanitizeRecord(rec Record) (SeismicEvent, map[string]int) {
	errs := make(map[string]int)

	ev := SeismicEvent{
		Time:        rec.Get(ColTime),
		LocationRef: rec.Get(ColLocationRef),
		TimeUTC:     rec.Get(ColTimeUTC),
		Status:      rec.Get(ColStatus),
	}

	date, err := time.Parse(dateLayout, rec.Get(ColDate))
	if err != nil {
		errs[ErrKindDate]++
		date = clock.Now().UTC().Truncate(24 * time.Hour)
	}
	ev.Date = date

	// The UTC date silently falls back to the local date; the upstream
	// catalog frequently omits it and counting it would drown real errors.
	dateUTC, err := time.Parse(dateLayout, rec.Get(ColDateUTC))
	if err != nil {
		dateUTC = ev.Date
	}
	ev.DateUTC = dateUTC

	mag, repaired := ParseMagnitude(rec.Get(ColMagnitude))
	if repaired {
		errs[ErrKindMagnitude]++
	}
	ev.Magnitude = &mag

	ev.Latitude = parseCoordinate(rec.Get(ColLatitude), ErrKindLatitude, errs)
	ev.Longitude = parseCoordinate(rec.Get(ColLongitude), ErrKindLongitude, errs)
	ev.DepthKm = parseCoordinate(rec.Get(ColDepth), ErrKindDepth, errs)

	ev.ProcessedAt = clock.Now()

	return ev, errs
}

// ParseMagnitude applies the catalog magnitude repair law and reports whether
// any repair was needed. The steps, in order:
//
//  1. trim, then replace ',' with '.' (European decimal notation)
//  2. strip every character that is not a digit, '.' or '-'
//  3. empty after stripping ⇒ 0.0
//  4. a second '.' ends the number ("6.1.2" reads as 6.1)
//  5. parse; failure ⇒ 0.0
//  6. negative ⇒ absolute value
//  7. > 10.0 ⇒ divide by 10 until ≤ 10.0 ("75" is a mistyped 7.5, not an
//     impossible quake)
//
// Relationship building depends on the corrected value, so this law must
// stay stable even though it is recovery, not seismology.
func ParseMagnitude(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	// A value that parses directly and is already in range needs no repair.
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v <= 10.0 {
		return v, false
	}

	cleaned := strings.ReplaceAll(s, ",", ".")
	cleaned = magnitudeJunkRe.ReplaceAllString(cleaned, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, true
	}

	// A second decimal point ends the number: "6.1.2" reads as 6.1.
	if first := strings.Index(cleaned, "."); first != -1 {
		if second := strings.Index(cleaned[first+1:], "."); second != -1 {
			cleaned = cleaned[:first+1+second]
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, true
	}
	if v < 0 {
		v = -v
	}
	for v > 10.0 {
		v /= 10
	}
	return v, true
}

// parseCoordinate parses a float field, substituting 0.0 and counting the
// error kind on failure. The record is kept either way.
func parseCoordinate(s, errKind string, errs map[string]int) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		errs[errKind]++
		return 0
	}
	return v
}
