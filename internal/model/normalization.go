package model

// NormalizationSource records where a canonical name decision came from.
type NormalizationSource string

const (
	SourceCache  NormalizationSource = "CACHE"
	SourceAI     NormalizationSource = "AI"
	SourceManual NormalizationSource = "MANUAL"
)

// NormalizationEntry maps one raw spelling to its canonical label.
// OriginalName is always stored lowercased and trimmed; it is the cache key.
type NormalizationEntry struct {
	OriginalName   string              `json:"originalName"`
	NormalizedName string              `json:"normalizedName"`
	Confidence     float64             `json:"confidence"`
	Source         NormalizationSource `json:"source"`
}

// NameGroup is one cluster returned by the AI grouping collaborator:
// a canonical label plus the raw variants it claims.
type NameGroup struct {
	Canonical  string   `json:"canonical"`
	Variants   []string `json:"variants"`
	Confidence float64  `json:"confidence"`
}
