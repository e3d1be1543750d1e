package services

import (
	"context"
	"errors"
	"testing"

	"github.com/siliconsage/build-engine/internal/engine"
	"github.com/siliconsage/build-engine/internal/models"
	"github.com/siliconsage/build-engine/internal/normalizer"
)

func TestAnalyzeRawBuild(t *testing.T) {
	service := NewAnalysisService(nil, engine.NewEngine(nil, nil))

	result, err := service.Analyze(context.Background(), map[string]any{
		"cpu_benchmark":     15000.0,
		"gpu_benchmark":     13000.0,
		"ram_gb":            16.0,
		"target_resolution": "1080p",
		"cpu_tdp_w":         65.0,
		"gpu_tdp_w":         150.0,
		"psu_wattage_w":     850.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PredictedFPS != 52.8 || result.BottleneckComponent != models.ComponentNone {
		t.Fatalf("unexpected result %+v", result)
	}
	if service.latencies.Count() != 1 {
		t.Fatalf("expected one latency sample, got %d", service.latencies.Count())
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	service := NewAnalysisService(nil, engine.NewEngine(nil, nil))

	_, err := service.Analyze(context.Background(), map[string]any{"psu_wattage_w": -1.0})
	var fieldErr *normalizer.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "psu_wattage_w" {
		t.Fatalf("expected field error for psu_wattage_w, got %v", err)
	}
}

func TestAnalyzeWithoutEngine(t *testing.T) {
	service := NewAnalysisService(nil, nil)
	if service.Ready() {
		t.Fatalf("service without engine must not report ready")
	}
	if _, err := service.Analyze(context.Background(), nil); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	service := NewAnalysisService(nil, engine.NewEngine(nil, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := service.Analyze(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	service := NewAnalysisService(nil, engine.NewEngine(nil, nil))
	result, err := service.Compare(context.Background(), 2000, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BestValueAlternative == nil {
		t.Fatalf("expected an alternative for a low-value build")
	}
}

func TestValueTier(t *testing.T) {
	service := NewAnalysisService(nil, nil)
	result, err := service.ValueTier(context.Background(), map[string]any{
		"name":            "NVIDIA RTX 4060",
		"price":           299.0,
		"benchmark_score": 13000.0,
		"category":        "video_card",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tier != models.TierMidrange {
		t.Fatalf("expected midrange, got %s", result.Tier)
	}
	if len(result.SimilarParts) != 1 || result.SimilarParts[0] != "AMD RX 7700 XT" {
		t.Fatalf("unexpected similar parts %v", result.SimilarParts)
	}

	_, err = service.ValueTier(context.Background(), map[string]any{"category": "gpu"})
	var fieldErr *normalizer.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "benchmark_score" {
		t.Fatalf("expected benchmark_score FieldError, got %v", err)
	}
}
