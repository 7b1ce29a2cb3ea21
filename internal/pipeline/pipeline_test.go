package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/pbscan/pbscan-cli/internal/grid"
	"github.com/pbscan/pbscan-cli/internal/model"
)

func gridFromRows(rows ...[]string) grid.Grid {
	g := make(grid.Grid, 0, len(rows))
	for _, row := range rows {
		cells := make([]grid.Cell, len(row))
		for i, s := range row {
			cells[i] = grid.StringCell(s)
		}
		g = append(g, cells)
	}
	return g
}

type fakeStore struct {
	entries map[string]model.NormalizationEntry
	puts    [][]model.NormalizationEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]model.NormalizationEntry)}
}

func (s *fakeStore) Get(ctx context.Context, names []string) (map[string]model.NormalizationEntry, error) {
	out := make(map[string]model.NormalizationEntry)
	for _, n := range names {
		if e, ok := s.entries[n]; ok {
			out[n] = e
		}
	}
	return out, nil
}

func (s *fakeStore) Put(ctx context.Context, entries []model.NormalizationEntry) error {
	s.puts = append(s.puts, entries)
	for _, e := range entries {
		s.entries[strings.ToLower(e.OriginalName)] = e
	}
	return nil
}

// fakeGrouper canonicalizes by lookup table and leaves unknown names to the
// engine's title-case fallback.
type fakeGrouper struct {
	canon map[string]string
	calls int
}

func (g *fakeGrouper) GroupNames(ctx context.Context, names []string) ([]model.NameGroup, error) {
	g.calls++
	byCanon := make(map[string][]string)
	var order []string
	for _, n := range names {
		c, ok := g.canon[n]
		if !ok {
			continue
		}
		if _, seen := byCanon[c]; !seen {
			order = append(order, c)
		}
		byCanon[c] = append(byCanon[c], n)
	}
	var groups []model.NameGroup
	for _, c := range order {
		groups = append(groups, model.NameGroup{Canonical: c, Variants: byCanon[c], Confidence: 0.9})
	}
	return groups, nil
}

// exportGrid mirrors a typical device export: a banner-free title row, the
// real header on the second row, then data rows with a calibration shot,
// restarted reading numbers, and one junk row.
func exportGrid() grid.Grid {
	return gridFromRows(
		[]string{"Site Export 2025"},
		[]string{"Reading #", "Component", "Color", "PbC", "Substrate"},
		[]string{"1", "door frame", "White", "2.13", "wd"},
		[]string{"2", "Calibration Check", "", "1.0", ""},
		[]string{"1", "dr frame", "White", "0.2", "wood"},
		[]string{"2", "wall", "Blue", "POS", "plaster"},
		[]string{"3", "", "", "", ""},
	)
}

func TestRunGridEndToEnd(t *testing.T) {
	store := newFakeStore()
	grouper := &fakeGrouper{canon: map[string]string{
		"door frame": "Door Frame",
		"dr frame":   "Door Frame",
		"wall":       "Wall",
		"wd":         "Wood",
		"wood":       "Wood",
		"plaster":    "Plaster",
	}}

	summary, res, err := RunGrid(context.Background(), exportGrid(), Options{
		JobID:       "job-1",
		SourceLabel: "site-a.xlsx",
		Store:       store,
		Grouper:     grouper,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.HeaderRow != 1 {
		t.Errorf("header row = %d, want 1", res.HeaderRow)
	}
	if res.CalibrationCount != 1 {
		t.Errorf("calibration count = %d, want 1", res.CalibrationCount)
	}
	if len(res.JunkRows) != 1 {
		t.Errorf("junk rows = %d, want 1", len(res.JunkRows))
	}
	if got := len(res.Readings) + len(res.RowErrors) + res.TotalSkipped(); got != res.TotalDataRows {
		t.Errorf("row accounting broken: %d classified vs %d data rows", got, res.TotalDataRows)
	}

	// Restarted reading numbers must still yield unique IDs.
	seen := make(map[string]bool)
	for _, r := range res.Readings {
		if seen[r.ID] {
			t.Errorf("duplicate reading ID %q", r.ID)
		}
		seen[r.ID] = true
	}

	if summary.JobID != "job-1" || summary.SourceLabel != "site-a.xlsx" {
		t.Errorf("summary identity = %q / %q", summary.JobID, summary.SourceLabel)
	}
	if summary.ProcessedAt.IsZero() {
		t.Error("ProcessedAt not set")
	}
	// 3 component names + 3 substrate names.
	if summary.NormalizedNameCount != 6 {
		t.Errorf("normalized name count = %d, want 6", summary.NormalizedNameCount)
	}
	if summary.CommonAreas != nil {
		t.Error("common areas set without being requested")
	}
	ds := summary.UnitAreas
	if ds == nil {
		t.Fatal("unit areas missing (default area type)")
	}
	if ds.AreaType != model.AreaUnit {
		t.Errorf("area type = %q", ds.AreaType)
	}
	if ds.TotalReadings != 3 || ds.TotalPositive != 2 || ds.TotalNegative != 1 {
		t.Errorf("totals = %d/%d/%d, want 3/2/1", ds.TotalReadings, ds.TotalPositive, ds.TotalNegative)
	}

	// "door frame" and "dr frame" collapse into one mixed group; "wall" is
	// a uniform positive.
	if len(ds.NonUniformGroups) != 1 {
		t.Fatalf("non-uniform groups = %d, want 1", len(ds.NonUniformGroups))
	}
	nu := ds.NonUniformGroups[0]
	if nu.Component != "Door Frame" || nu.Substrate != "Wood" {
		t.Errorf("mixed group = %q / %q", nu.Component, nu.Substrate)
	}
	if nu.PositiveCount != 1 || nu.NegativeCount != 1 || len(nu.Readings) != 2 {
		t.Errorf("mixed group counts = %+v", nu)
	}
	if len(ds.UniformGroups) != 1 {
		t.Fatalf("uniform groups = %d, want 1", len(ds.UniformGroups))
	}
	if ds.UniformGroups[0].Component != "Wall" || ds.UniformGroups[0].Verdict != model.VerdictPositive {
		t.Errorf("uniform group = %+v", ds.UniformGroups[0])
	}

	// One grouping call per name kind, and fresh decisions persisted.
	if grouper.calls != 2 {
		t.Errorf("grouper calls = %d, want 2", grouper.calls)
	}
	if len(store.puts) != 2 {
		t.Errorf("cache writes = %d, want 2", len(store.puts))
	}
}

func TestRunGridCommonAreas(t *testing.T) {
	summary, _, err := RunGrid(context.Background(), exportGrid(), Options{
		JobID:    "job-2",
		AreaType: model.AreaCommon,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.UnitAreas != nil {
		t.Error("unit areas set for a common-area run")
	}
	if summary.CommonAreas == nil || summary.CommonAreas.AreaType != model.AreaCommon {
		t.Fatalf("common areas = %+v", summary.CommonAreas)
	}
}

func TestRunGridWithoutCollaborators(t *testing.T) {
	// No store, no grouper: names fall back to title-casing and the run
	// still completes.
	summary, res, err := RunGrid(context.Background(), exportGrid(), Options{JobID: "job-3"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Readings) != 3 {
		t.Fatalf("readings = %d, want 3", len(res.Readings))
	}
	var doorFrames int
	for _, r := range res.Readings {
		if r.NormalizedComponent == "Door Frame" {
			doorFrames++
		}
	}
	if doorFrames != 1 {
		t.Errorf("title-case fallback cannot merge spellings; Door Frame count = %d, want 1", doorFrames)
	}
	if summary.UnitAreas.UniqueComponents != 3 {
		t.Errorf("unique components = %d, want 3 without AI grouping", summary.UnitAreas.UniqueComponents)
	}
}

func TestRunGridSecondRunHitsCache(t *testing.T) {
	store := newFakeStore()
	grouper := &fakeGrouper{canon: map[string]string{
		"door frame": "Door Frame", "dr frame": "Door Frame", "wall": "Wall",
		"wd": "Wood", "wood": "Wood", "plaster": "Plaster",
	}}
	opts := Options{JobID: "job-4", Store: store, Grouper: grouper}

	if _, _, err := RunGrid(context.Background(), exportGrid(), opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	calls := grouper.calls
	if _, _, err := RunGrid(context.Background(), exportGrid(), opts); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if grouper.calls != calls {
		t.Errorf("second run called the grouper %d more times; cache should fully cover it", grouper.calls-calls)
	}
}

func TestRunGridEmptyGrid(t *testing.T) {
	if _, _, err := RunGrid(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected an error for an empty grid")
	}
}
