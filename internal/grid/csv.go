package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads a delimited text file into a Grid of string cells. The
// delimiter is sniffed from the filename when not supplied (0), so .tsv
// files work without flags.
func LoadCSV(path string, delimiter rune) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if delimiter == 0 {
		delimiter = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return readCSV(r)
}

// LoadCSVReader reads delimited text from an io.Reader (used in tests and
// for stdin input).
func LoadCSVReader(src io.Reader, delimiter rune) (Grid, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	r := csv.NewReader(src)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return readCSV(r)
}

func readCSV(r *csv.Reader) (Grid, error) {
	var g Grid
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = StringCell(v)
		}
		g = append(g, row)
	}
	return g, nil
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

// Load dispatches on file extension: .xlsx goes through the worksheet
// reader, everything else is treated as delimited text.
func Load(path, sheetName string, sheetIndex int, delimiter rune) (Grid, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, sheetName, sheetIndex)
	}
	return LoadCSV(path, delimiter)
}
