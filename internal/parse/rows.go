package parse

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pbscan/pbscan-cli/internal/grid"
	"github.com/pbscan/pbscan-cli/internal/model"
)

// SkipReason codes why a data row was excluded without being an error.
type SkipReason string

const (
	ReasonCalibration   SkipReason = "calibration"
	ReasonNoComponent   SkipReason = "noComponent"
	ReasonNoLeadContent SkipReason = "noLeadContent"
)

// RowError records an unexpected per-row failure; parsing continues past it.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Line, e.Err) }

// RowOutcome is a tagged result of classifying one data row: exactly one of
// Reading, Skip, or Err is set.
type RowOutcome struct {
	Reading *model.Reading
	Skip    SkipReason
	Err     *RowError
}

// assumedPositiveValue stands in for textual "positive" results. It sits
// just above the regulatory threshold and deliberately outside the
// calibration-check value set, so a token like "POS" can never be mistaken
// for a calibration shot.
const assumedPositiveValue = 1.01

// calibrationValues are canonical calibration-check results: a device
// checking itself against a reference standard reports near-1.0 values.
var calibrationValues = []float64{1.0, 1.1, 1.2}

// calibrationMarkers are matched as case-insensitive substrings of the
// component or reading-id text. "calibrat" covers both "calibration" and
// "calibrate".
var calibrationMarkers = []string{"calibrat", "cal check", "standard"}

var positiveTokens = []string{"pos", "positive", "assumed", "assumed positive"}
var negativeTokens = []string{"neg", "negative", "n/a", "-"}

// ClassifyRow coerces one data row into a Reading or one of the skip
// outcomes. seq is the 1-based index of the row within the data section;
// line is the 1-based line number in the source file.
func ClassifyRow(row []grid.Cell, m Mapping, seq, line int) RowOutcome {
	component := m.Cell(row, FieldComponent).Text()
	rawID := m.Cell(row, FieldReadingID).Text()
	lead, hasLead := CoerceLead(m.Cell(row, FieldLeadContent))

	if isCalibration(component, rawID, lead, hasLead) {
		return RowOutcome{Skip: ReasonCalibration}
	}
	if component == "" {
		return RowOutcome{Skip: ReasonNoComponent}
	}
	if !hasLead {
		return RowOutcome{Skip: ReasonNoLeadContent}
	}

	r := model.NewReading(buildID(rawID, seq), component, lead)
	r.Color = m.Cell(row, FieldColor).Text()
	r.UnitNumber = m.Cell(row, FieldUnitNumber).Text()
	r.RoomType = m.Cell(row, FieldRoomType).Text()
	r.RoomNumber = m.Cell(row, FieldRoomNumber).Text()
	r.Substrate = m.Cell(row, FieldSubstrate).Text()
	r.Side = m.Cell(row, FieldSide).Text()
	r.Condition = m.Cell(row, FieldCondition).Text()
	r.Timestamp = m.Cell(row, FieldTimestamp).Text()
	r.SourceLine = line

	// A combined location column wins verbatim; otherwise synthesize one
	// from the unit/room hierarchy.
	if loc := m.Cell(row, FieldLocation).Text(); loc != "" {
		r.Location = loc
	} else {
		r.Location = joinLocation(r.UnitNumber, r.RoomType, r.RoomNumber)
	}
	return RowOutcome{Reading: &r}
}

// buildID makes an identifier that stays unique even when source reading
// numbers restart after calibration breaks or are absent entirely.
func buildID(rawID string, seq int) string {
	if rawID == "" {
		return fmt.Sprintf("Row_%d", seq)
	}
	return fmt.Sprintf("%s_%d", rawID, seq)
}

func joinLocation(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " - ")
}

// isCalibration detects device self-check rows: a marker token in the
// component or reading-id text, or a blank component with a lead value on
// one of the canonical calibration-check values.
func isCalibration(component, rawID string, lead float64, hasLead bool) bool {
	for _, text := range []string{component, rawID} {
		lc := strings.ToLower(text)
		if lc == "" {
			continue
		}
		for _, marker := range calibrationMarkers {
			if strings.Contains(lc, marker) {
				return true
			}
		}
	}
	if component == "" && hasLead {
		for _, v := range calibrationValues {
			if math.Abs(lead-v) < 1e-9 {
				return true
			}
		}
	}
	return false
}

// CoerceLead turns a raw result cell into a lead concentration in mg/cm².
// Numeric cells pass through; booleans and categorical positive/negative
// tokens map to fixed values; unit suffixes, comparison operators, and
// thousands separators are stripped before numeric parsing. The second
// return is false when no value can be extracted.
func CoerceLead(c grid.Cell) (float64, bool) {
	switch c.Kind {
	case grid.KindNumber:
		if c.Num < 0 {
			return 0, true
		}
		return c.Num, true
	case grid.KindBool:
		if c.Bool {
			return assumedPositiveValue, true
		}
		return 0, true
	case grid.KindString:
		return coerceLeadText(c.Str)
	}
	return 0, false
}

func coerceLeadText(s string) (float64, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return 0, false
	}
	for _, tok := range positiveTokens {
		if t == tok {
			return assumedPositiveValue, true
		}
	}
	for _, tok := range negativeTokens {
		if t == tok {
			return 0, true
		}
	}
	for _, suffix := range []string{"mg/cm²", "mg/cm2", "ppm"} {
		t = strings.TrimSuffix(t, suffix)
	}
	t = strings.TrimSpace(t)
	t = strings.TrimLeft(t, "<>")
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		f = 0
	}
	return f, true
}
