// Command validate dry-runs the field sanitizer over a catalog CSV without
// touching any store. It reports how many rows would need repair, broken down
// by error kind, and exits non-zero when the repair rate exceeds a threshold.
// Useful as a pre-ingestion check on a fresh catalog export.
//
// Usage:
//
//	go run ./cmd/validate -csv data/mock/catalog_synthetic.csv -max-repair-rate 0.2
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/seismic-data-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("csv", "", "catalog CSV file to check")
	maxRate := flag.Float64("max-repair-rate", 1.0, "maximum tolerated fraction of rows needing repair")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv")
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows, repaired int
	byKind := make(map[string]int)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			byKind[domain.ErrKindGeneral]++
			rows++
			continue
		}

		rec := make(domain.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}

		_, errs := domain.SanitizeRecord(rec)
		rows++
		if len(errs) > 0 {
			repaired++
		}
		for kind, n := range errs {
			byKind[kind] += n
		}
	}

	rate := 0.0
	if rows > 0 {
		rate = float64(repaired) / float64(rows)
	}

	fmt.Printf("rows:     %d\n", rows)
	fmt.Printf("repaired: %d (%.1f%%)\n", repaired, rate*100)

	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-22s %d\n", kind, byKind[kind])
	}

	if rate > *maxRate {
		return fmt.Errorf("repair rate %.3f exceeds threshold %.3f", rate, *maxRate)
	}
	return nil
}
