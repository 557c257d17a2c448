// Command genevents generates synthetic seismic catalog CSV fixtures for the
// ingestion test suites. A fraction of rows carries the field damage seen in
// real catalog exports (comma decimals, stray units, missing values) so the
// repair path gets exercised end to end.
//
// Usage:
//
//	go run ./cmd/genevents -out data/mock/catalog_synthetic.csv -rows 1000 -seed 42
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
)

var baseDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

// regions the generator scatters events around, roughly matching the spread
// of a national catalog.
var regions = []struct {
	name     string
	lat, lon float64
}{
	{"costa de Guerrero", 16.8, -99.9},
	{"costa de Oaxaca", 16.2, -95.2},
	{"Chiapas", 16.7, -93.1},
	{"Michoacan", 18.5, -103.4},
	{"Baja California", 32.2, -115.3},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the synthetic catalog CSV")
	summaryOut := flag.String("summary-out", "", "optional path for the expected ingestion summary JSON")
	rows := flag.Int("rows", 1000, "number of catalog rows to generate")
	seed := flag.Int64("seed", 42, "random seed, fixed for reproducible fixtures")
	dirty := flag.Float64("dirty", 0.1, "fraction of rows with damaged fields")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(*seed))
	w := csv.NewWriter(f)

	header := []string{
		"Fecha", "Hora", "Magnitud", "Latitud", "Longitud", "Profundidad",
		"Referencia de localizacion", "Fecha UTC", "Hora UTC", "Estatus",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	// Tally what the sanitizer would report so the fixture ships with its
	// expected ingestion summary.
	expected := expectedSummary{ErrorsByKind: make(map[string]int)}

	for i := 0; i < *rows; i++ {
		row := generateRow(rng, i, *dirty)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}

		rec := make(domain.Record, len(header))
		for j, col := range header {
			rec[strings.ToLower(col)] = row[j]
		}
		_, errs := domain.SanitizeRecord(rec)
		expected.RowsSeen++
		if len(errs) > 0 {
			expected.RowsRepaired++
		}
		for kind, n := range errs {
			expected.ErrorsByKind[kind] += n
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if *summaryOut != "" {
		data, err := json.MarshalIndent(expected, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		if err := os.WriteFile(*summaryOut, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	log.Printf("wrote %d rows to %s (%d need repair)", *rows, *out, expected.RowsRepaired)
	return nil
}

// expectedSummary mirrors the ingestion summary fields a clean store load of
// the fixture should produce.
type expectedSummary struct {
	RowsSeen     int            `json:"rowsSeen"`
	RowsRepaired int            `json:"rowsRepaired"`
	ErrorsByKind map[string]int `json:"errorsByKind"`
}

func generateRow(rng *rand.Rand, i int, dirty float64) []string {
	region := regions[rng.Intn(len(regions))]
	date := baseDate.AddDate(0, 0, i/50)
	local := time.Duration(rng.Intn(24*3600)) * time.Second
	utc := date.Add(local + 6*time.Hour)

	magnitude := 3.0 + rng.Float64()*5.0
	lat := region.lat + rng.Float64()*2 - 1
	lon := region.lon + rng.Float64()*2 - 1
	depth := 5.0 + rng.Float64()*100

	mag := strconv.FormatFloat(magnitude, 'f', 1, 64)
	dateStr := date.Format("2006-01-02")

	if rng.Float64() < dirty {
		switch rng.Intn(5) {
		case 0: // comma decimal separator
			mag = fmt.Sprintf("%d,%d", int(magnitude), int(magnitude*10)%10)
		case 1: // magnitude scaled by ten with a unit suffix
			mag = fmt.Sprintf("%dM", int(magnitude*10))
		case 2: // missing magnitude
			mag = ""
		case 3: // unparseable date
			dateStr = date.Format("02/01/2006")
		case 4: // junk around the value
			mag = "M:" + mag + "°"
		}
	}

	return []string{
		dateStr,
		date.Add(local).Format("15:04:05"),
		mag,
		strconv.FormatFloat(lat, 'f', 4, 64),
		strconv.FormatFloat(lon, 'f', 4, 64),
		strconv.FormatFloat(depth, 'f', 1, 64),
		fmt.Sprintf("%d km al suroeste de %s", 5+rng.Intn(80), region.name),
		utc.Format("2006-01-02"),
		utc.Format("15:04:05"),
		"revisado",
	}
}
