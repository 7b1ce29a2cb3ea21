package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pbscan/pbscan-cli/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	entries := []model.NormalizationEntry{
		{OriginalName: "door frame", NormalizedName: "Door Frame", Confidence: 0.9, Source: model.SourceAI},
		{OriginalName: "wd", NormalizedName: "Wood", Confidence: 0.8, Source: model.SourceAI},
	}
	if err := s.Put(ctx, entries); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, []string{"door frame", "missing"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %d, want 1", len(got))
	}
	e := got["door frame"]
	if e.NormalizedName != "Door Frame" || e.Confidence != 0.9 || e.Source != model.SourceAI {
		t.Fatalf("entry = %+v", e)
	}
}

func TestPutUpsertsAndIncrementsUseCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	e := model.NormalizationEntry{OriginalName: "wall", NormalizedName: "Wall", Confidence: 0.7, Source: model.SourceAI}
	if err := s.Put(ctx, []model.NormalizationEntry{e}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	e.NormalizedName = "Wall Surface"
	e.Confidence = 0.95
	if err := s.Put(ctx, []model.NormalizationEntry{e}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	rows, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after upsert", len(rows))
	}
	if rows[0].NormalizedName != "Wall Surface" {
		t.Errorf("last write should win, got %q", rows[0].NormalizedName)
	}
	if rows[0].UseCount != 2 {
		t.Errorf("use count = %d, want 2", rows[0].UseCount)
	}
}

func TestPutLowercasesKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	err := s.Put(ctx, []model.NormalizationEntry{
		{OriginalName: "  DOOR Frame ", NormalizedName: "Door Frame", Confidence: 1, Source: model.SourceManual},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, []string{"door frame"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := got["door frame"]; !ok {
		t.Fatal("key should be stored lowercased and trimmed")
	}
}

func TestStatsAndClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	err := s.Put(ctx, []model.NormalizationEntry{
		{OriginalName: "a", NormalizedName: "A", Confidence: 1, Source: model.SourceAI},
		{OriginalName: "b", NormalizedName: "B", Confidence: 1, Source: model.SourceAI},
		{OriginalName: "c", NormalizedName: "C", Confidence: 1, Source: model.SourceManual},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	st, err := s.CollectStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 3 || st.BySource[model.SourceAI] != 2 || st.BySource[model.SourceManual] != 1 {
		t.Fatalf("stats = %+v", st)
	}
	n, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 3 {
		t.Fatalf("cleared = %d, want 3", n)
	}
	st, err = s.CollectStats(ctx)
	if err != nil {
		t.Fatalf("stats after clear: %v", err)
	}
	if st.Total != 0 {
		t.Fatalf("cache not empty after clear: %+v", st)
	}
}

func TestGetEmptyInput(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
