package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/siliconsage/build-engine/internal/models"
)

// ErrInvariant marks a BuildSpec that should never have left the normalizer.
var ErrInvariant = errors.New("build spec invariant violated")

// Engine combines the FPS predictor, bottleneck classifier and integrity scorer.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	logger    *slog.Logger
	platforms *PlatformTable
	scorer    *IntegrityScorer
}

// NewEngine constructs an analysis engine over the given platform table.
func NewEngine(logger *slog.Logger, platforms *PlatformTable) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if platforms == nil {
		platforms = DefaultPlatformTable()
	}
	return &Engine{
		logger:    logger,
		platforms: platforms,
		scorer:    NewIntegrityScorer(platforms),
	}
}

// Platforms exposes the platform table the engine scores against.
func (e *Engine) Platforms() *PlatformTable {
	return e.platforms
}

// Analyze evaluates a normalized BuildSpec. The same spec always produces the same result.
func (e *Engine) Analyze(spec models.BuildSpec) (models.AnalysisResult, error) {
	if err := validateSpec(spec); err != nil {
		e.logger.Error("rejecting build spec", slog.Any("error", err))
		return models.AnalysisResult{}, err
	}

	bottleneck, err := ClassifyBottleneck(spec.CPUBenchmark, spec.GPUBenchmark)
	if err != nil {
		e.logger.Error("bottleneck classification failed", slog.Any("error", err))
		return models.AnalysisResult{}, err
	}
	fps := PredictFPS(spec)
	report := e.scorer.Score(spec)

	e.logger.Debug("build analyzed",
		slog.Float64("fps", fps),
		slog.Float64("ratio", bottleneck.Ratio),
		slog.String("bottleneck", string(bottleneck.Component)),
		slog.Int("integrity", report.Score))

	return models.AnalysisResult{
		PredictedFPS:             fps,
		BottleneckComponent:      bottleneck.Component,
		BottleneckSeverity:       bottleneck.Severity,
		BottleneckRecommendation: bottleneck.Recommendation,
		IntegrityScore:           report.Score,
		IntegrityStatus:          report.Status,
		IntegrityWarnings:        report.Warnings,
		IntegrityNotes:           report.Notes,
	}, nil
}

type specField struct {
	name  string
	value float64
}

func validateSpec(spec models.BuildSpec) error {
	for _, f := range []specField{
		{"cpu_benchmark", spec.CPUBenchmark},
		{"gpu_benchmark", spec.GPUBenchmark},
	} {
		if !finite(f.value) || f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvariant, f.name, f.value)
		}
	}
	for _, f := range []specField{
		{"cpu_tdp_w", spec.CPUTDPW},
		{"gpu_tdp_w", spec.GPUTDPW},
		{"psu_wattage_w", spec.PSUWattageW},
		{"cpu_boost_clock_ghz", spec.CPUBoostClockGHz},
		{"ram_gb", float64(spec.RAMGB)},
		{"gpu_length_mm", spec.GPULengthMM},
	} {
		if !finite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative and finite, got %v", ErrInvariant, f.name, f.value)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
