package normalize

import (
	"strings"

	"github.com/pbscan/pbscan-cli/internal/model"
)

// Apply reconciles normalization results back onto the readings, matching
// entries to raw names by lowercased trimmed text. The normalized fields
// are written exactly once per run; readings with no matching entry keep
// their raw names for grouping.
func Apply(readings []model.Reading, components, substrates []model.NormalizationEntry) {
	compByName := indexEntries(components)
	subByName := indexEntries(substrates)
	for i := range readings {
		if e, ok := compByName[strings.ToLower(strings.TrimSpace(readings[i].Component))]; ok {
			readings[i].NormalizedComponent = e.NormalizedName
		}
		if e, ok := subByName[strings.ToLower(strings.TrimSpace(readings[i].Substrate))]; ok {
			readings[i].NormalizedSubstrate = e.NormalizedName
		}
	}
}

// ComponentNames collects the raw component names of a batch.
func ComponentNames(readings []model.Reading) []string {
	out := make([]string, 0, len(readings))
	for _, r := range readings {
		out = append(out, r.Component)
	}
	return out
}

// SubstrateNames collects the raw substrate names of a batch.
func SubstrateNames(readings []model.Reading) []string {
	out := make([]string, 0, len(readings))
	for _, r := range readings {
		out = append(out, r.Substrate)
	}
	return out
}

func indexEntries(entries []model.NormalizationEntry) map[string]model.NormalizationEntry {
	m := make(map[string]model.NormalizationEntry, len(entries))
	for _, e := range entries {
		m[e.OriginalName] = e
	}
	return m
}
