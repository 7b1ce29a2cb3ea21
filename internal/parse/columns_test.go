package parse

import (
	"context"
	"errors"
	"testing"
)

type fakeMapper struct {
	result map[string]string
	err    error
	calls  int
}

func (f *fakeMapper) MapColumns(_ context.Context, headers []string, samples [][]string) (map[string]string, error) {
	f.calls++
	return f.result, f.err
}

func TestMapColumnsStaticAliases(t *testing.T) {
	headers := []string{"Reading #", "Component", "Colour", "Lead (mg/cm2)", "Substrate", "Side", "Date"}
	m, _, err := MapColumns(context.Background(), headers, nil, nil)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	want := map[Field]int{
		FieldReadingID:   0,
		FieldComponent:   1,
		FieldColor:       2,
		FieldLeadContent: 3,
		FieldSubstrate:   4,
		FieldSide:        5,
		FieldTimestamp:   6,
	}
	for f, idx := range want {
		if got, ok := m.Columns[f]; !ok || got != idx {
			t.Errorf("%s = column %d (present=%v), want %d", f, got, ok, idx)
		}
	}
}

func TestMapColumnsPrefixTruncation(t *testing.T) {
	// Truncated headers as some devices emit them.
	headers := []string{"Reading Numb", "Compone", "Color", "Lead Conte"}
	m, _, err := MapColumns(context.Background(), headers, nil, nil)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if len(m.Columns) < 4 {
		t.Fatalf("expected all required fields via prefix match, got %v", m.Columns)
	}
}

func TestMapColumnsShortHeadersDoNotPrefixMatch(t *testing.T) {
	headers := []string{"re", "co", "cl", "le"}
	_, _, err := MapColumns(context.Background(), headers, nil, nil)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
}

func TestMapColumnsMissingRequired(t *testing.T) {
	headers := []string{"Reading", "Component", "Foo", "Bar"}
	_, _, err := MapColumns(context.Background(), headers, nil, nil)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	found := map[Field]bool{}
	for _, f := range missing.Missing {
		found[f] = true
	}
	if !found[FieldColor] || !found[FieldLeadContent] {
		t.Errorf("missing fields = %v, want color and leadContent", missing.Missing)
	}
}

func TestMapColumnsAIFallback(t *testing.T) {
	headers := []string{"Rdng", "Cmpnt", "Clr", "Pb Result"}
	mapper := &fakeMapper{result: map[string]string{
		"readingId":   "Rdng",
		"component":   "Cmpnt",
		"color":       "Clr",
		"leadContent": "Pb Result",
	}}
	m, _, err := MapColumns(context.Background(), headers, mapper, nil)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if mapper.calls != 1 {
		t.Fatalf("mapper calls = %d, want 1", mapper.calls)
	}
	if len(m.AIMapped) == 0 {
		t.Error("expected AI-mapped fields recorded")
	}
}

func TestMapColumnsRejectsHallucinatedHeaders(t *testing.T) {
	headers := []string{"Rdng", "Cmpnt", "Clr", "Zz"}
	mapper := &fakeMapper{result: map[string]string{
		"readingId":   "Rdng",
		"component":   "Cmpnt",
		"color":       "Clr",
		"leadContent": "Lead Result", // not in the file
	}}
	_, warnings, err := MapColumns(context.Background(), headers, mapper, nil)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning about the ignored hallucinated column")
	}
}

func TestMapColumnsAINotCalledWhenResolved(t *testing.T) {
	headers := []string{"Reading", "Component", "Color", "PbC"}
	mapper := &fakeMapper{result: map[string]string{}}
	_, _, err := MapColumns(context.Background(), headers, mapper, nil)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if mapper.calls != 0 {
		t.Fatalf("mapper should not be consulted when aliases resolve everything; calls = %d", mapper.calls)
	}
}
