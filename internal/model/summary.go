package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Verdict is the regulatory outcome assigned to a component group.
type Verdict string

const (
	VerdictPositive Verdict = "POSITIVE"
	VerdictNegative Verdict = "NEGATIVE"
)

// AreaType distinguishes the two dataset kinds a job can carry.
type AreaType string

const (
	AreaCommon AreaType = "common"
	AreaUnit   AreaType = "unit"
)

// AverageGroup summarizes a group classified under the statistical sampling
// rule (40 or more readings): the verdict follows the positive percentage,
// not any single reading.
type AverageGroup struct {
	Component       string  `json:"component"`
	Substrate       string  `json:"substrate,omitempty"`
	TotalReadings   int     `json:"totalReadings"`
	PositiveCount   int     `json:"positiveCount"`
	NegativeCount   int     `json:"negativeCount"`
	PositivePercent float64 `json:"positivePercent"`
	NegativePercent float64 `json:"negativePercent"`
	Verdict         Verdict `json:"verdict"`
}

// UniformGroup summarizes a small group whose readings all agree.
// Individual readings are not retained; the shared verdict says it all.
type UniformGroup struct {
	Component     string  `json:"component"`
	Substrate     string  `json:"substrate,omitempty"`
	TotalReadings int     `json:"totalReadings"`
	Verdict       Verdict `json:"verdict"`
}

// NonUniformGroup is a small group with mixed outcomes. No single verdict
// would be honest here, so every reading is kept for location-level review.
type NonUniformGroup struct {
	Component     string    `json:"component"`
	Substrate     string    `json:"substrate,omitempty"`
	TotalReadings int       `json:"totalReadings"`
	PositiveCount int       `json:"positiveCount"`
	NegativeCount int       `json:"negativeCount"`
	Readings      []Reading `json:"readings"`
}

// DatasetSummary aggregates one area type's readings and group verdicts.
type DatasetSummary struct {
	AreaType         AreaType          `json:"areaType"`
	TotalReadings    int               `json:"totalReadings"`
	TotalPositive    int               `json:"totalPositive"`
	TotalNegative    int               `json:"totalNegative"`
	UniqueComponents int               `json:"uniqueComponents"`
	AverageGroups    []AverageGroup    `json:"averageGroups"`
	UniformGroups    []UniformGroup    `json:"uniformGroups"`
	NonUniformGroups []NonUniformGroup `json:"nonUniformGroups"`
}

// JobSummary is the terminal artifact of one processing run. It is the
// contract other parts of the system persist and later reload verbatim.
type JobSummary struct {
	JobID               string          `json:"jobId"`
	ProcessedAt         time.Time       `json:"processedAt"`
	SourceLabel         string          `json:"sourceLabel,omitempty"`
	NormalizedNameCount int             `json:"normalizedNameCount"`
	CommonAreas         *DatasetSummary `json:"commonAreas,omitempty"`
	UnitAreas           *DatasetSummary `json:"unitAreas,omitempty"`
}

// ToJSON serializes the summary as indented JSON.
func (s *JobSummary) ToJSON() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return b, nil
}

// JobSummaryFromJSON parses a previously serialized summary.
func JobSummaryFromJSON(b []byte) (*JobSummary, error) {
	var s JobSummary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &s, nil
}
