package parse

import (
	"context"
	"errors"
	"fmt"

	"github.com/pbscan/pbscan-cli/internal/grid"
	"github.com/pbscan/pbscan-cli/internal/model"
)

var (
	// ErrEmptyGrid means the input file produced no rows at all.
	ErrEmptyGrid = errors.New("file contains no rows")
	// ErrNoDataRows means a header was found but nothing follows it.
	ErrNoDataRows = errors.New("no data rows found below the header")
)

// Options configures a grid parse.
type Options struct {
	// Mapper is the optional AI column-mapping collaborator.
	Mapper AIMapper
	// SampleRows caps how many data rows are sent to the mapper for
	// context. Zero means 3.
	SampleRows int
}

// SkippedRow records a junk row with enough detail for a human to fix the
// source file and re-submit.
type SkippedRow struct {
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`
}

// Result is the outcome of parsing one grid. The conservation invariant
// holds for every successful parse:
//
//	len(Readings) + len(RowErrors) + CalibrationCount + len(JunkRows) == TotalDataRows
type Result struct {
	HeaderRow        int
	Mapping          Mapping
	Readings         []model.Reading
	CalibrationCount int
	JunkRows         []SkippedRow
	RowErrors        []RowError
	TotalDataRows    int
	Warnings         []string
}

// ParseGrid runs header detection, column mapping, and row classification
// over a loaded grid. Fatal conditions (empty grid, no data rows, missing
// required columns) return an error and no partial reading list; per-row
// problems are collected in the Result and never abort the batch.
func ParseGrid(ctx context.Context, g grid.Grid, opts Options) (*Result, error) {
	if len(g) == 0 {
		return nil, ErrEmptyGrid
	}

	loc := LocateHeader(g)
	res := &Result{HeaderRow: loc.Row, Warnings: loc.Warnings}

	dataRows := g[loc.Row+1:]
	if len(dataRows) == 0 {
		return nil, ErrNoDataRows
	}

	samples := sampleRows(dataRows, opts.SampleRows)
	mapping, warnings, err := MapColumns(ctx, loc.Headers, opts.Mapper, samples)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return nil, err
	}
	res.Mapping = mapping
	for _, f := range mapping.AIMapped {
		res.Warnings = append(res.Warnings, fmt.Sprintf("column for %s was resolved by AI mapping", f))
	}

	for i, row := range dataRows {
		seq := i + 1
		line := loc.Row + 1 + seq // 1-based line number in the source file
		outcome := classifyRowSafe(row, mapping, seq, line)
		switch {
		case outcome.Err != nil:
			res.RowErrors = append(res.RowErrors, *outcome.Err)
		case outcome.Skip == ReasonCalibration:
			res.CalibrationCount++
		case outcome.Skip != "":
			res.JunkRows = append(res.JunkRows, SkippedRow{Line: line, Reason: outcome.Skip})
		default:
			res.Readings = append(res.Readings, *outcome.Reading)
		}
		res.TotalDataRows++
	}
	return res, nil
}

// classifyRowSafe converts a panic while coercing a malformed row into a
// RowError so one bad row never takes down the batch.
func classifyRowSafe(row []grid.Cell, m Mapping, seq, line int) (out RowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = RowOutcome{Err: &RowError{Line: line, Err: fmt.Errorf("unexpected row failure: %v", r)}}
		}
	}()
	return ClassifyRow(row, m, seq, line)
}

// TotalSkipped counts calibration and junk rows together.
func (r *Result) TotalSkipped() int {
	return r.CalibrationCount + len(r.JunkRows)
}

func sampleRows(dataRows grid.Grid, n int) [][]string {
	if n <= 0 {
		n = 3
	}
	if n > len(dataRows) {
		n = len(dataRows)
	}
	out := make([][]string, 0, n)
	for _, row := range dataRows[:n] {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Text()
		}
		out = append(out, cells)
	}
	return out
}
