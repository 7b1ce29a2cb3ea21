package parse

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbscan/pbscan-cli/internal/grid"
)

// AIMapper is the external column-mapping collaborator: given the observed
// headers (and a few sample rows for context) it proposes canonical field →
// header assignments. Implementations live outside this package; a nil
// mapper disables the fallback.
type AIMapper interface {
	MapColumns(ctx context.Context, headers []string, samples [][]string) (map[string]string, error)
}

// Mapping resolves canonical fields to concrete columns of one export.
type Mapping struct {
	Headers  []string
	Columns  map[Field]int
	Unmapped []string
	AIMapped []Field
}

// Header returns the original header text a field resolved to.
func (m Mapping) Header(f Field) (string, bool) {
	idx, ok := m.Columns[f]
	if !ok || idx < 0 || idx >= len(m.Headers) {
		return "", false
	}
	return m.Headers[idx], true
}

// Cell extracts the cell for a field from a data row. Rows shorter than the
// mapped column read as empty.
func (m Mapping) Cell(row []grid.Cell, f Field) grid.Cell {
	idx, ok := m.Columns[f]
	if !ok || idx < 0 || idx >= len(row) {
		return grid.Cell{}
	}
	return row[idx]
}

// MissingColumnsError is the terminal failure when required fields cannot
// be resolved by either alias matching or the AI collaborator.
type MissingColumnsError struct {
	Missing []Field
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("required columns could not be identified: %s\n"+
		"  Observed headers: %s\n"+
		"  Check that the export includes reading number, component, color, and lead result columns,\n"+
		"  or add the vendor's header spellings to the alias table.",
		strings.Join(names, ", "), strings.Join(e.Headers, " | "))
}

// MapColumns resolves every canonical field against the header list. Static
// alias matching runs first; the AI collaborator is consulted only when a
// required field is still unresolved, and its answers are accepted only for
// headers that literally exist in the original list.
func MapColumns(ctx context.Context, headers []string, mapper AIMapper, samples [][]string) (Mapping, []string, error) {
	m := Mapping{Headers: headers, Columns: make(map[Field]int)}
	claimed := make(map[int]bool)
	var warnings []string

	// Exact matches first so a prefix match never steals a column another
	// field matches exactly; field order is fixed for determinism.
	for _, field := range fieldOrder {
		for idx, h := range headers {
			if claimed[idx] || strings.TrimSpace(h) == "" {
				continue
			}
			if matchExact(field, h) {
				m.Columns[field] = idx
				claimed[idx] = true
				break
			}
		}
	}
	for _, field := range fieldOrder {
		if _, done := m.Columns[field]; done {
			continue
		}
		for idx, h := range headers {
			if claimed[idx] || strings.TrimSpace(h) == "" {
				continue
			}
			if matchAlias(field, h) {
				m.Columns[field] = idx
				claimed[idx] = true
				break
			}
		}
	}

	if missing := missingRequired(m); len(missing) > 0 && mapper != nil {
		aiCols, err := mapper.MapColumns(ctx, headers, samples)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("AI column mapping unavailable: %v", err))
		} else {
			applyAIMapping(&m, aiCols, claimed, &warnings)
		}
	}

	for idx, h := range headers {
		if !claimed[idx] && strings.TrimSpace(h) != "" {
			m.Unmapped = append(m.Unmapped, h)
		}
	}

	if missing := missingRequired(m); len(missing) > 0 {
		return m, warnings, &MissingColumnsError{Missing: missing, Headers: headers}
	}
	return m, warnings, nil
}

// applyAIMapping folds collaborator assignments into the mapping, dropping
// any column name that does not literally appear in the header list. The
// collaborator sees free text and can invent plausible-sounding columns.
func applyAIMapping(m *Mapping, aiCols map[string]string, claimed map[int]bool, warnings *[]string) {
	for fieldName, header := range aiCols {
		field := Field(fieldName)
		if _, known := fieldAliases[field]; !known {
			continue
		}
		if _, done := m.Columns[field]; done {
			continue
		}
		idx := indexOfHeader(m.Headers, header)
		if idx < 0 {
			*warnings = append(*warnings,
				fmt.Sprintf("AI mapped %s to %q, which is not in the file; ignored", fieldName, header))
			continue
		}
		if claimed[idx] {
			continue
		}
		m.Columns[field] = idx
		claimed[idx] = true
		m.AIMapped = append(m.AIMapped, field)
	}
}

func indexOfHeader(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func missingRequired(m Mapping) []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := m.Columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
