package engine

import (
	"fmt"

	"github.com/siliconsage/build-engine/internal/models"
)

// GPU:CPU benchmark ratio boundaries. All comparisons are strict.
const (
	cpuBoundRatio    = 0.9
	cpuModerateRatio = 1.0
	cpuSevereRatio   = 1.2
	gpuBoundRatio    = 0.4
	gpuModerateRatio = 0.3
	gpuSevereRatio   = 0.2
)

// Bottleneck is the classifier verdict for a build.
type Bottleneck struct {
	Component      models.Component
	Severity       models.Severity
	Ratio          float64
	Recommendation string
}

type bottleneckKey struct {
	component models.Component
	severity  models.Severity
}

var bottleneckRecommendations = map[bottleneckKey]string{
	{models.ComponentNone, models.SeverityNone}:    "Well-balanced build! CPU and GPU are evenly matched.",
	{models.ComponentCPU, models.SeverityMinor}:    "Minor CPU limitation detected. Performance impact is minimal.",
	{models.ComponentCPU, models.SeverityModerate}: "Your CPU is holding the GPU back. Consider a faster CPU or a higher target resolution.",
	{models.ComponentCPU, models.SeveritySevere}:   "Your CPU is severely limiting GPU performance. Upgrade the CPU before anything else.",
	{models.ComponentGPU, models.SeverityMinor}:    "Minor GPU limitation detected. Performance impact is minimal.",
	{models.ComponentGPU, models.SeverityModerate}: "Your GPU is the limiting factor. Upgrade the GPU for better frame rates.",
	{models.ComponentGPU, models.SeveritySevere}:   "Your GPU is severely underpowered for this CPU. A GPU upgrade will give the largest gain.",
}

// ClassifyBottleneck compares GPU and CPU benchmark proxies and assigns the limiting component
// and its severity. cpuBenchmark must be positive.
func ClassifyBottleneck(cpuBenchmark, gpuBenchmark float64) (Bottleneck, error) {
	if !finite(cpuBenchmark) || cpuBenchmark <= 0 {
		return Bottleneck{}, fmt.Errorf("%w: cpu_benchmark must be positive and finite, got %v", ErrInvariant, cpuBenchmark)
	}
	ratio := gpuBenchmark / cpuBenchmark

	component, severity := models.ComponentNone, models.SeverityNone
	switch {
	case ratio > cpuBoundRatio:
		component = models.ComponentCPU
		switch {
		case ratio > cpuSevereRatio:
			severity = models.SeveritySevere
		case ratio > cpuModerateRatio:
			severity = models.SeverityModerate
		default:
			severity = models.SeverityMinor
		}
	case ratio < gpuBoundRatio:
		component = models.ComponentGPU
		switch {
		case ratio < gpuSevereRatio:
			severity = models.SeveritySevere
		case ratio < gpuModerateRatio:
			severity = models.SeverityModerate
		default:
			severity = models.SeverityMinor
		}
	}

	return Bottleneck{
		Component:      component,
		Severity:       severity,
		Ratio:          ratio,
		Recommendation: Recommendation(component, severity),
	}, nil
}

// Recommendation returns the fixed advice text for a component/severity pair.
func Recommendation(component models.Component, severity models.Severity) string {
	if text, ok := bottleneckRecommendations[bottleneckKey{component, severity}]; ok {
		return text
	}
	return bottleneckRecommendations[bottleneckKey{models.ComponentNone, models.SeverityNone}]
}
