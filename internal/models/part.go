package models

// PartCategory is the catalog category a single part is ranked within.
type PartCategory string

const (
	CategoryCPU PartCategory = "cpu"
	CategoryGPU PartCategory = "gpu"
	CategoryRAM PartCategory = "ram"
)

// ValueTier is the market segment a part is placed in.
type ValueTier string

const (
	TierBudget     ValueTier = "budget"
	TierMidrange   ValueTier = "midrange"
	TierHighEnd    ValueTier = "highend"
	TierEnthusiast ValueTier = "enthusiast"
)

// PartSpec is one part submitted for value ranking. Price zero means unknown.
type PartSpec struct {
	Name           string       `json:"name"`
	Price          float64      `json:"price"`
	BenchmarkScore float64      `json:"benchmark_score"`
	Category       PartCategory `json:"category"`
}

// ReferencePart is a catalog part with a known tier used for ranking and alternatives.
type ReferencePart struct {
	Name      string
	Category  PartCategory
	PriceUSD  int64
	Benchmark int64
	Tier      ValueTier
}

// ValueTierResult places a part in a tier and scores its benchmark per dollar against that tier.
type ValueTierResult struct {
	Tier         ValueTier `json:"tier"`
	ValueScore   float64   `json:"value_score"`
	SimilarParts []string  `json:"similar_parts"`
}
