package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/siliconsage/build-engine/internal/models"
)

func TestClassifyBottleneckBoundaries(t *testing.T) {
	cases := []struct {
		gpu       float64
		component models.Component
		severity  models.Severity
	}{
		{gpu: 1000, component: models.ComponentGPU, severity: models.SeveritySevere},
		{gpu: 2000, component: models.ComponentGPU, severity: models.SeverityModerate},
		{gpu: 2500, component: models.ComponentGPU, severity: models.SeverityModerate},
		{gpu: 3000, component: models.ComponentGPU, severity: models.SeverityMinor},
		{gpu: 3900, component: models.ComponentGPU, severity: models.SeverityMinor},
		{gpu: 4000, component: models.ComponentNone, severity: models.SeverityNone},
		{gpu: 8700, component: models.ComponentNone, severity: models.SeverityNone},
		{gpu: 9000, component: models.ComponentNone, severity: models.SeverityNone},
		{gpu: 9500, component: models.ComponentCPU, severity: models.SeverityMinor},
		{gpu: 10000, component: models.ComponentCPU, severity: models.SeverityMinor},
		{gpu: 11000, component: models.ComponentCPU, severity: models.SeverityModerate},
		{gpu: 12000, component: models.ComponentCPU, severity: models.SeverityModerate},
		{gpu: 15000, component: models.ComponentCPU, severity: models.SeveritySevere},
	}

	for _, tc := range cases {
		got, err := ClassifyBottleneck(10000, tc.gpu)
		if err != nil {
			t.Fatalf("gpu=%v: unexpected error %v", tc.gpu, err)
		}
		if got.Component != tc.component || got.Severity != tc.severity {
			t.Fatalf("gpu=%v: expected %s/%s, got %s/%s", tc.gpu, tc.component, tc.severity, got.Component, got.Severity)
		}
		if got.Recommendation == "" {
			t.Fatalf("gpu=%v: expected recommendation text", tc.gpu)
		}
	}
}

func TestClassifyBottleneckSevereCPU(t *testing.T) {
	got, err := ClassifyBottleneck(10000, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Ratio != 5.0 {
		t.Fatalf("expected ratio 5.0, got %v", got.Ratio)
	}
	if got.Component != models.ComponentCPU || got.Severity != models.SeveritySevere {
		t.Fatalf("expected severe CPU bottleneck, got %s/%s", got.Component, got.Severity)
	}
}

func TestClassifyBottleneckNoneHasNoSeverity(t *testing.T) {
	got, err := ClassifyBottleneck(15000, 13000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Component != models.ComponentNone || got.Severity != models.SeverityNone {
		t.Fatalf("expected balanced build, got %s/%s", got.Component, got.Severity)
	}
	if got.Recommendation != Recommendation(models.ComponentNone, models.SeverityNone) {
		t.Fatalf("unexpected recommendation %q", got.Recommendation)
	}
}

func TestClassifyBottleneckRejectsInvalidCPU(t *testing.T) {
	for _, cpu := range []float64{0, -100, math.NaN(), math.Inf(1)} {
		if _, err := ClassifyBottleneck(cpu, 10000); !errors.Is(err, ErrInvariant) {
			t.Fatalf("cpu=%v: expected ErrInvariant, got %v", cpu, err)
		}
	}
}

func TestRecommendationFallsBackToBalanced(t *testing.T) {
	got := Recommendation(models.ComponentNone, models.SeveritySevere)
	if got != Recommendation(models.ComponentNone, models.SeverityNone) {
		t.Fatalf("expected balanced fallback, got %q", got)
	}
}
