// Package classify buckets readings into regulatory verdicts per
// (component, substrate) group and assembles dataset summaries.
package classify

import (
	"math"
	"sort"

	"github.com/pbscan/pbscan-cli/internal/model"
)

const (
	// averageSampleSize is the group size at which the statistical
	// sampling rule applies instead of the all-or-nothing rules.
	averageSampleSize = 40
	// averagePositiveCutoff is the positive percentage strictly above
	// which a large group is positive.
	averagePositiveCutoff = 2.5
)

type groupKey struct {
	component string
	substrate string
}

// Classify groups readings by normalized component and substrate and
// applies the fixed regulatory rules: groups of 40 or more use the
// percentage rule, smaller groups are uniform when all readings agree and
// non-uniform otherwise. Dataset totals are computed over all readings,
// independent of grouping. Normalization must run before classification;
// un-normalized readings group by their raw names.
func Classify(readings []model.Reading, areaType model.AreaType) *model.DatasetSummary {
	s := &model.DatasetSummary{
		AreaType:      areaType,
		TotalReadings: len(readings),
	}
	for _, r := range readings {
		if r.IsPositive {
			s.TotalPositive++
		} else {
			s.TotalNegative++
		}
	}

	groups := make(map[groupKey][]model.Reading)
	var order []groupKey
	for _, r := range readings {
		k := groupKey{component: r.GroupComponent(), substrate: r.GroupSubstrate()}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}
	s.UniqueComponents = len(groups)

	// Deterministic output: component then substrate, case-sensitive.
	sort.Slice(order, func(i, j int) bool {
		if order[i].component != order[j].component {
			return order[i].component < order[j].component
		}
		return order[i].substrate < order[j].substrate
	})

	for _, k := range order {
		members := groups[k]
		positive := 0
		for _, r := range members {
			if r.IsPositive {
				positive++
			}
		}
		negative := len(members) - positive

		switch {
		case len(members) >= averageSampleSize:
			positivePct := round1(float64(positive) / float64(len(members)) * 100)
			negativePct := round1(float64(negative) / float64(len(members)) * 100)
			verdict := model.VerdictNegative
			if positivePct > averagePositiveCutoff {
				verdict = model.VerdictPositive
			}
			s.AverageGroups = append(s.AverageGroups, model.AverageGroup{
				Component:       k.component,
				Substrate:       k.substrate,
				TotalReadings:   len(members),
				PositiveCount:   positive,
				NegativeCount:   negative,
				PositivePercent: positivePct,
				NegativePercent: negativePct,
				Verdict:         verdict,
			})
		case positive == 0 || negative == 0:
			verdict := model.VerdictNegative
			if positive > 0 {
				verdict = model.VerdictPositive
			}
			s.UniformGroups = append(s.UniformGroups, model.UniformGroup{
				Component:     k.component,
				Substrate:     k.substrate,
				TotalReadings: len(members),
				Verdict:       verdict,
			})
		default:
			// Mixed small group: keep every reading so each location can
			// be inspected and remediated individually.
			s.NonUniformGroups = append(s.NonUniformGroups, model.NonUniformGroup{
				Component:     k.component,
				Substrate:     k.substrate,
				TotalReadings: len(members),
				PositiveCount: positive,
				NegativeCount: negative,
				Readings:      members,
			})
		}
	}
	return s
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
