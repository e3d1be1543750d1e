package models

// Component identifies which part limits throughput.
type Component string

const (
	ComponentNone Component = "none"
	ComponentCPU  Component = "CPU"
	ComponentGPU  Component = "GPU"
)

// Severity captures bottleneck impact levels.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// AnalysisResult is the combined output of a single build analysis.
type AnalysisResult struct {
	PredictedFPS             float64   `json:"predicted_fps"`
	BottleneckComponent      Component `json:"bottleneck_component"`
	BottleneckSeverity       Severity  `json:"bottleneck_severity"`
	BottleneckRecommendation string    `json:"bottleneck_recommendation"`
	IntegrityScore           int       `json:"integrity_score"`
	IntegrityStatus          string    `json:"integrity_status"`
	IntegrityWarnings        []string  `json:"integrity_warnings"`
	IntegrityNotes           []string  `json:"integrity_notes"`
}
