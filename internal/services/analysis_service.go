package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/siliconsage/build-engine/internal/engine"
	"github.com/siliconsage/build-engine/internal/metrics"
	"github.com/siliconsage/build-engine/internal/models"
	"github.com/siliconsage/build-engine/internal/normalizer"
	"github.com/siliconsage/build-engine/internal/utils"
)

// ErrNotReady is returned when the service was built without an engine.
var ErrNotReady = errors.New("analysis engine not loaded")

// AnalysisService is the single entry point shared by the HTTP, gRPC and CLI surfaces.
type AnalysisService struct {
	logger     *slog.Logger
	normalizer *normalizer.Normalizer
	engine     *engine.Engine
	latencies  *utils.LatencyTracker
}

// NewAnalysisService constructs the analysis facade.
func NewAnalysisService(logger *slog.Logger, eng *engine.Engine) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger:     logger,
		normalizer: normalizer.New(logger),
		engine:     eng,
		latencies:  utils.NewLatencyTracker(1024),
	}
}

// Analyze normalizes a raw build description and evaluates it.
func (s *AnalysisService) Analyze(ctx context.Context, raw map[string]any) (models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}
	if s.engine == nil {
		return models.AnalysisResult{}, ErrNotReady
	}

	start := time.Now()
	spec, err := s.normalizer.Normalize(raw)
	if err != nil {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeRejected)
		s.logger.Debug("build rejected", slog.Any("error", err))
		return models.AnalysisResult{}, err
	}

	result, err := s.engine.Analyze(spec)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(duration, metrics.OutcomeError)
		return models.AnalysisResult{}, fmt.Errorf("analyze build: %w", err)
	}

	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	metrics.ObserveVerdict(string(result.BottleneckComponent), string(result.BottleneckSeverity), result.IntegrityScore)
	if count := s.latencies.Count(); count >= 100 && count%100 == 0 {
		summary := s.latencies.Summary()
		s.logger.Info("analysis latency",
			slog.Duration("p50", summary.P50),
			slog.Duration("p95", summary.P95),
			slog.Int("samples", summary.Count))
	}

	return result, nil
}

// Compare prices a finished build against the reference consoles and laptops.
func (s *AnalysisService) Compare(ctx context.Context, price, fps1080p float64) (models.EcosystemComparison, error) {
	if err := ctx.Err(); err != nil {
		return models.EcosystemComparison{}, err
	}
	return engine.CompareEcosystem(price, fps1080p)
}

// ValueTier ranks a single part against the reference catalog. It needs no loaded engine.
func (s *AnalysisService) ValueTier(ctx context.Context, raw map[string]any) (models.ValueTierResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ValueTierResult{}, err
	}
	part, err := s.normalizer.NormalizePart(raw)
	if err != nil {
		s.logger.Debug("part rejected", slog.Any("error", err))
		return models.ValueTierResult{}, err
	}
	return engine.ClassifyValueTier(part)
}

// Platforms returns the platform table the engine scores sockets against.
func (s *AnalysisService) Platforms() *engine.PlatformTable {
	if s.engine == nil {
		return nil
	}
	return s.engine.Platforms()
}

// Ready reports whether analyses can be served.
func (s *AnalysisService) Ready() bool {
	return s.engine != nil
}

// LatencySummary returns percentiles over the most recent analyses.
func (s *AnalysisService) LatencySummary() utils.LatencySummary {
	if s.latencies == nil {
		return utils.LatencySummary{}
	}
	return s.latencies.Summary()
}
