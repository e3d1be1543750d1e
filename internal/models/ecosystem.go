package models

// ReferenceSystem is a pre-built platform a custom build is compared against.
type ReferenceSystem struct {
	Name     string
	PriceUSD int64
	FPS1080p int64
}

// SystemComparison reports how the build's FPS-per-dollar stacks up against one reference system.
type SystemComparison struct {
	System            string  `json:"system"`
	Price             float64 `json:"price"`
	FPS1080p          float64 `json:"fps_1080p"`
	YourValueVsSystem float64 `json:"your_value_vs_system"`
	Recommendation    string  `json:"recommendation"`
}

// BuildValue summarises the evaluated build.
type BuildValue struct {
	Price      float64 `json:"price"`
	FPS1080p   float64 `json:"fps_1080p"`
	ValueScore float64 `json:"value_score"`
}

// EcosystemComparison is the result of comparing a build against consoles and laptops.
type EcosystemComparison struct {
	YourBuild            BuildValue         `json:"your_build"`
	Comparisons          []SystemComparison `json:"comparisons"`
	BestValueAlternative *string            `json:"best_value_alternative"`
}
