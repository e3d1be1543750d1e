package engine

import (
	"math"

	"github.com/siliconsage/build-engine/internal/models"
)

const (
	// MinFPS and MaxFPS bound every prediction.
	MinFPS = 30.0
	MaxFPS = 240.0

	gpuBenchmarkDivisor = 300.0
	cpuBenchmarkDivisor = 1000.0
	ramBaselineGB       = 16.0
	ramFPSPerBaseline   = 5.0
)

// GPU contribution shrinks as resolution increases.
var resolutionFactors = map[models.Resolution]float64{
	models.Resolution1080p: 1.0,
	models.Resolution1440p: 0.65,
	models.Resolution4K:    0.35,
}

// CPU matters less at higher resolutions.
var cpuFactors = map[models.Resolution]float64{
	models.Resolution1080p: 0.3,
	models.Resolution1440p: 0.2,
	models.Resolution4K:    0.1,
}

// PredictFPS estimates frames per second with a closed-form linear model, clamped to [MinFPS, MaxFPS]
// and rounded to one decimal.
func PredictFPS(spec models.BuildSpec) float64 {
	resFactor, ok := resolutionFactors[spec.TargetResolution]
	if !ok {
		resFactor = resolutionFactors[models.Resolution1080p]
	}
	cpuFactor, ok := cpuFactors[spec.TargetResolution]
	if !ok {
		cpuFactor = cpuFactors[models.Resolution1080p]
	}

	base := (spec.GPUBenchmark/gpuBenchmarkDivisor)*resFactor +
		(spec.CPUBenchmark/cpuBenchmarkDivisor)*cpuFactor +
		(float64(spec.RAMGB)/ramBaselineGB)*ramFPSPerBaseline

	return round1(clamp(base, MinFPS, MaxFPS))
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
