package model

// PositiveThreshold is the regulatory lead concentration cutoff in mg/cm².
// A reading at or above it is positive.
const PositiveThreshold = 1.0

// Reading is one XRF shot at a specific building location, already coerced
// into canonical form by the row parser. The normalized name fields start
// empty and are filled in exactly once by the normalization engine; every
// other field is fixed at construction.
type Reading struct {
	ID                  string  `json:"id"`
	Component           string  `json:"component"`
	NormalizedComponent string  `json:"normalizedComponent,omitempty"`
	LeadContent         float64 `json:"leadContent"`
	IsPositive          bool    `json:"isPositive"`

	Color               string `json:"color,omitempty"`
	Location            string `json:"location,omitempty"`
	UnitNumber          string `json:"unitNumber,omitempty"`
	RoomType            string `json:"roomType,omitempty"`
	RoomNumber          string `json:"roomNumber,omitempty"`
	Substrate           string `json:"substrate,omitempty"`
	NormalizedSubstrate string `json:"normalizedSubstrate,omitempty"`
	Side                string `json:"side,omitempty"`
	Condition           string `json:"condition,omitempty"`
	Timestamp           string `json:"timestamp,omitempty"`

	// SourceLine is the 1-based line number of the row in the source file,
	// kept so junk reports and non-uniform summaries stay traceable.
	SourceLine int `json:"sourceLine"`
}

// NewReading builds a Reading with IsPositive derived from the lead value.
// IsPositive is never set independently; use SetLeadContent to change it.
func NewReading(id, component string, leadContent float64) Reading {
	return Reading{
		ID:          id,
		Component:   component,
		LeadContent: leadContent,
		IsPositive:  leadContent >= PositiveThreshold,
	}
}

// SetLeadContent updates the lead value and recomputes IsPositive.
func (r *Reading) SetLeadContent(v float64) {
	r.LeadContent = v
	r.IsPositive = v >= PositiveThreshold
}

// GroupComponent returns the name used for classification grouping:
// the normalized component when present, the raw component otherwise.
func (r *Reading) GroupComponent() string {
	if r.NormalizedComponent != "" {
		return r.NormalizedComponent
	}
	return r.Component
}

// GroupSubstrate returns the substrate used for classification grouping.
func (r *Reading) GroupSubstrate() string {
	if r.NormalizedSubstrate != "" {
		return r.NormalizedSubstrate
	}
	return r.Substrate
}
