package parse

import (
	"testing"

	"github.com/pbscan/pbscan-cli/internal/grid"
)

func TestCoerceLead(t *testing.T) {
	cases := []struct {
		name string
		cell grid.Cell
		want float64
		ok   bool
	}{
		{"number passthrough", grid.NumberCell(2.13), 2.13, true},
		{"negative clamps to zero", grid.NumberCell(-0.02), 0, true},
		{"bool true is assumed positive", grid.BoolCell(true), 1.01, true},
		{"bool false is negative", grid.BoolCell(false), 0, true},
		{"positive token", grid.StringCell("POS"), 1.01, true},
		{"assumed positive token", grid.StringCell("Assumed Positive"), 1.01, true},
		{"negative token", grid.StringCell("neg"), 0, true},
		{"n/a token", grid.StringCell("N/A"), 0, true},
		{"dash token", grid.StringCell("-"), 0, true},
		{"unit suffix", grid.StringCell("2.5 mg/cm2"), 2.5, true},
		{"unicode unit suffix", grid.StringCell("0.8 mg/cm²"), 0.8, true},
		{"comparison operator", grid.StringCell("<0.1"), 0.1, true},
		{"thousands separator", grid.StringCell("1,024"), 1024, true},
		{"plain numeric text", grid.StringCell("0.0"), 0, true},
		{"unparseable", grid.StringCell("wood"), 0, false},
		{"empty cell", grid.Cell{}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CoerceLead(tc.cell)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("value = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPositiveTokenAvoidsCalibrationValues(t *testing.T) {
	v, ok := CoerceLead(grid.StringCell("pos"))
	if !ok {
		t.Fatal("expected a value")
	}
	if v < 1.0 {
		t.Fatalf("positive token coerced below threshold: %v", v)
	}
	for _, cal := range calibrationValues {
		if v == cal {
			t.Fatalf("positive token value %v collides with calibration value", v)
		}
	}
}

func testMapping() Mapping {
	headers := []string{"Reading", "Component", "Color", "PbC", "Substrate", "Room"}
	return Mapping{
		Headers: headers,
		Columns: map[Field]int{
			FieldReadingID:   0,
			FieldComponent:   1,
			FieldColor:       2,
			FieldLeadContent: 3,
			FieldSubstrate:   4,
			FieldRoomType:    5,
		},
	}
}

func row(cells ...string) []grid.Cell {
	out := make([]grid.Cell, len(cells))
	for i, c := range cells {
		out[i] = grid.StringCell(c)
	}
	return out
}

func TestClassifyRowOutcomes(t *testing.T) {
	m := testMapping()
	cases := []struct {
		name string
		row  []grid.Cell
		skip SkipReason
	}{
		{"calibration marker in component", row("1", "Calibration Check", "", "1.0"), ReasonCalibration},
		{"calibration marker in reading id", row("Standard 1", "", "", "1.05"), ReasonCalibration},
		{"blank component with calibration value", row("4", "", "", "1.1"), ReasonCalibration},
		{"no component", row("5", "", "White", "2.3"), ReasonNoComponent},
		{"no lead value", row("6", "Wall", "White", "pending"), ReasonNoLeadContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := ClassifyRow(tc.row, m, 1, 2)
			if out.Reading != nil || out.Err != nil || out.Skip != tc.skip {
				t.Fatalf("outcome = %+v, want skip %q", out, tc.skip)
			}
		})
	}
}

func TestClassifyRowBuildsReading(t *testing.T) {
	m := testMapping()
	out := ClassifyRow(row("17", "Door Jamb", "Brown", "2.13", "Wood", "Kitchen"), m, 3, 9)
	if out.Reading == nil {
		t.Fatalf("expected a reading, got %+v", out)
	}
	r := out.Reading
	if r.ID != "17_3" {
		t.Errorf("ID = %q, want 17_3", r.ID)
	}
	if !r.IsPositive {
		t.Error("2.13 mg/cm² should be positive")
	}
	if r.Substrate != "Wood" || r.RoomType != "Kitchen" || r.Color != "Brown" {
		t.Errorf("descriptive fields not carried: %+v", r)
	}
	if r.Location != "Kitchen" {
		t.Errorf("Location = %q, want synthesized from room hierarchy", r.Location)
	}
	if r.SourceLine != 9 {
		t.Errorf("SourceLine = %d, want 9", r.SourceLine)
	}
}

func TestClassifyRowSynthesizesID(t *testing.T) {
	m := testMapping()
	out := ClassifyRow(row("", "Baseboard", "White", "0.2"), m, 7, 12)
	if out.Reading == nil {
		t.Fatalf("expected a reading, got %+v", out)
	}
	if out.Reading.ID != "Row_7" {
		t.Errorf("ID = %q, want Row_7", out.Reading.ID)
	}
	if out.Reading.IsPositive {
		t.Error("0.2 mg/cm² should be negative")
	}
}

func TestBlankComponentWithNonCalibrationValueIsJunk(t *testing.T) {
	m := testMapping()
	out := ClassifyRow(row("8", "", "", "2.4"), m, 1, 2)
	if out.Skip != ReasonNoComponent {
		t.Fatalf("outcome = %+v, want noComponent skip", out)
	}
}
