// Package parse turns a raw spreadsheet grid into typed XRF readings:
// it locates the header row, resolves vendor-specific column headers to
// canonical fields, and classifies each data row.
package parse

import "strings"

// Field names one canonical column of a measurement export.
type Field string

const (
	FieldReadingID   Field = "readingId"
	FieldComponent   Field = "component"
	FieldColor       Field = "color"
	FieldLeadContent Field = "leadContent"
	FieldLocation    Field = "location"
	FieldUnitNumber  Field = "unitNumber"
	FieldRoomType    Field = "roomType"
	FieldRoomNumber  Field = "roomNumber"
	FieldSubstrate   Field = "substrate"
	FieldSide        Field = "side"
	FieldCondition   Field = "condition"
	FieldTimestamp   Field = "timestamp"
)

// RequiredFields must all resolve for a parse to proceed.
var RequiredFields = []Field{FieldReadingID, FieldComponent, FieldColor, FieldLeadContent}

// fieldAliases maps each canonical field to header spellings observed across
// device vendors. Matching is trimmed and case-folded; extending support for
// a new vendor means adding strings here, not code.
var fieldAliases = map[Field][]string{
	FieldReadingID: {
		"reading", "reading #", "reading no", "reading no.", "reading number",
		"rdg", "rdg #", "shot", "shot #", "shot number", "test #", "test no",
		"sample", "sample #", "index", "seq", "sequence",
	},
	FieldComponent: {
		"component", "building component", "structure", "member", "item",
		"surface", "comp", "element",
	},
	FieldColor: {
		"color", "colour", "paint color", "paint colour",
	},
	FieldLeadContent: {
		"pbc", "pb", "pb conc", "pb concentration", "lead", "lead content",
		"lead conc", "lead (mg/cm2)", "lead (mg/cm²)", "pbc (mg/cm2)",
		"concentration", "result", "results", "mg/cm2", "mg/cm²",
	},
	FieldLocation: {
		"location", "site location", "test location", "address",
	},
	FieldUnitNumber: {
		"unit", "unit #", "unit number", "apt", "apt #", "apartment",
	},
	FieldRoomType: {
		"room", "room type", "room name", "area",
	},
	FieldRoomNumber: {
		"room #", "room number", "room no", "room no.",
	},
	FieldSubstrate: {
		"substrate", "sub", "base material", "material",
	},
	FieldSide: {
		"side", "wall side", "side/wall", "side a-d",
	},
	FieldCondition: {
		"condition", "paint condition", "cond",
	},
	FieldTimestamp: {
		"date", "time", "date/time", "date time", "timestamp", "reading date",
	},
}

// fieldOrder fixes the resolution order of the column mapper: required
// fields claim columns before optional ones, and iteration stays
// deterministic run to run.
var fieldOrder = []Field{
	FieldReadingID, FieldComponent, FieldColor, FieldLeadContent,
	FieldLocation, FieldUnitNumber, FieldRoomType, FieldRoomNumber,
	FieldSubstrate, FieldSide, FieldCondition, FieldTimestamp,
}

// scoringFields drive header-row detection: a row that looks like a header
// matches several of these at once.
var scoringFields = []Field{FieldReadingID, FieldComponent, FieldLeadContent, FieldColor}

// minPrefixLen guards truncation matching so short strings like "pb" never
// claim unrelated headers by accident.
const minPrefixLen = 4

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchAlias reports whether header resolves to field, first by exact
// case-insensitive alias match, then by prefix/truncation match in either
// direction.
func matchAlias(field Field, header string) bool {
	h := normalizeHeader(header)
	if h == "" {
		return false
	}
	for _, a := range fieldAliases[field] {
		if h == a {
			return true
		}
	}
	if len(h) < minPrefixLen {
		return false
	}
	for _, a := range fieldAliases[field] {
		if len(a) < minPrefixLen {
			continue
		}
		if strings.HasPrefix(a, h) || strings.HasPrefix(h, a) {
			return true
		}
	}
	return false
}

// matchExact reports an exact alias match only, used by the header locator
// where prefix matches would inflate row scores.
func matchExact(field Field, header string) bool {
	h := normalizeHeader(header)
	if h == "" {
		return false
	}
	for _, a := range fieldAliases[field] {
		if h == a {
			return true
		}
	}
	return false
}
