// Package grid loads vendor spreadsheet exports into a uniform 2-D cell
// grid. Both the XLSX and CSV readers produce the same Grid type, so the
// rest of the pipeline has exactly one code path.
package grid

import (
	"strconv"
	"strings"
)

// CellKind tags the coerced type of a raw cell value.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindString
	KindNumber
	KindBool
)

// Cell is one untyped spreadsheet cell. Exactly one of the value fields is
// meaningful, selected by Kind.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Bool bool
}

// Grid is an ordered sequence of rows of cells. It is produced once per
// input file and treated as immutable afterwards.
type Grid [][]Cell

// StringCell wraps text, mapping whitespace-only text to an empty cell.
func StringCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: KindString, Str: s}
}

// NumberCell wraps a numeric value.
func NumberCell(v float64) Cell { return Cell{Kind: KindNumber, Num: v} }

// BoolCell wraps a boolean value.
func BoolCell(v bool) Cell { return Cell{Kind: KindBool, Bool: v} }

// IsEmpty reports whether the cell carries no usable value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || (c.Kind == KindString && strings.TrimSpace(c.Str) == "")
}

// Text renders the cell as trimmed text. Numbers use the shortest exact
// decimal form, so "2" stays "2" rather than "2.000000".
func (c Cell) Text() string {
	switch c.Kind {
	case KindString:
		return strings.TrimSpace(c.Str)
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindBool:
		if c.Bool {
			return "true"
		}
		return "false"
	}
	return ""
}
