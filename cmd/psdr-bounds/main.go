// Command psdr-bounds fits a Lipschitz matrix to sampled function data and
// prints two-sided bounds at query points.
//
// The training CSV holds one sample per row, input coordinates first and
// the function value in the last column. The query CSV holds input
// coordinates only. A header row is skipped if it fails to parse.
//
// Usage:
//
//	psdr-bounds -data samples.csv -query points.csv [-epsilon 0.1] [-log info]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/lipschitz"
	"github.com/vishalbelsare/PSDR/pkg/log"
)

func main() {
	dataPath := flag.String("data", "", "CSV of training samples (inputs..., value)")
	queryPath := flag.String("query", "", "CSV of query points (inputs...)")
	epsilon := flag.Float64("epsilon", 0, "noise deadband on function values")
	logLevel := flag.String("log", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	log.SetupLogger(*logLevel)

	if *dataPath == "" || *queryPath == "" {
		fmt.Fprintln(os.Stderr, "psdr-bounds: -data and -query are required")
		flag.Usage()
		os.Exit(2)
	}

	rows, err := loadCSV(*dataPath)
	if err != nil {
		fatal(err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		fatal(fmt.Errorf("%s: need rows of at least one input column plus a value", *dataPath))
	}
	m := len(rows[0]) - 1
	X := mat.NewDense(len(rows), m, nil)
	fX := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != m+1 {
			fatal(fmt.Errorf("%s: row %d has %d columns, want %d", *dataPath, i+1, len(row), m+1))
		}
		X.SetRow(i, row[:m])
		fX[i] = row[m]
	}

	queries, err := loadCSV(*queryPath)
	if err != nil {
		fatal(err)
	}
	if len(queries) == 0 {
		fatal(fmt.Errorf("%s: no query points", *queryPath))
	}
	Xtest := mat.NewDense(len(queries), m, nil)
	for i, row := range queries {
		if len(row) != m {
			fatal(fmt.Errorf("%s: row %d has %d columns, want %d", *queryPath, i+1, len(row), m))
		}
		Xtest.SetRow(i, row)
	}

	lm := lipschitz.NewLipschitzMatrix(lipschitz.WithEpsilon(*epsilon))
	if err := lm.Fit(X, fX, nil); err != nil {
		fatal(err)
	}

	lb, ub, err := lm.Bounds(X, fX, Xtest)
	if err != nil {
		fatal(err)
	}

	w := csv.NewWriter(os.Stdout)
	_ = w.Write([]string{"lower", "upper"})
	for i := range lb {
		_ = w.Write([]string{
			strconv.FormatFloat(lb[i], 'g', -1, 64),
			strconv.FormatFloat(ub[i], 'g', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fatal(err)
	}
}

// loadCSV parses a numeric CSV, skipping an unparsable first row so files
// with headers load transparently.
func loadCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var out [][]float64
	for i, rec := range records {
		row := make([]float64, len(rec))
		ok := true
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			row[j] = v
		}
		if !ok {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%s: row %d is not numeric", path, i+1)
		}
		out = append(out, row)
	}
	return out, nil
}

func fatal(err error) {
	log.LogError(err, "psdr-bounds failed")
	fmt.Fprintln(os.Stderr, "psdr-bounds:", err)
	os.Exit(1)
}
