package engine

import (
	"testing"

	"github.com/siliconsage/build-engine/internal/models"
)

func TestPredictFPSReferenceBuild(t *testing.T) {
	spec := testSpec()
	spec.CPUBenchmark = 15000
	spec.GPUBenchmark = 13000
	spec.RAMGB = 16

	if got := PredictFPS(spec); got != 52.8 {
		t.Fatalf("expected 52.8 fps, got %v", got)
	}
}

func TestPredictFPSResolutionFactors(t *testing.T) {
	spec := testSpec()
	spec.CPUBenchmark = 20000
	spec.GPUBenchmark = 30000
	spec.RAMGB = 32
	spec.TargetResolution = models.Resolution1440p

	if got := PredictFPS(spec); got != 79 {
		t.Fatalf("expected 79 fps at 1440p, got %v", got)
	}

	spec.TargetResolution = models.Resolution1080p
	fhd := PredictFPS(spec)
	spec.TargetResolution = models.Resolution4K
	uhd := PredictFPS(spec)
	if !(fhd > uhd) {
		t.Fatalf("expected 1080p (%v) above 4k (%v)", fhd, uhd)
	}
}

func TestPredictFPSClamps(t *testing.T) {
	low := testSpec()
	low.CPUBenchmark = 15000
	low.GPUBenchmark = 13000
	low.TargetResolution = models.Resolution4K
	if got := PredictFPS(low); got != MinFPS {
		t.Fatalf("expected floor %v, got %v", MinFPS, got)
	}

	high := testSpec()
	high.GPUBenchmark = 200000
	if got := PredictFPS(high); got != MaxFPS {
		t.Fatalf("expected ceiling %v, got %v", MaxFPS, got)
	}
}

func TestPredictFPSMonotonicInGPU(t *testing.T) {
	spec := testSpec()
	prev := 0.0
	for gpu := 1000.0; gpu <= 90000; gpu += 1500 {
		spec.GPUBenchmark = gpu
		fps := PredictFPS(spec)
		if fps < prev {
			t.Fatalf("fps decreased from %v to %v at gpu_benchmark=%v", prev, fps, gpu)
		}
		if fps < MinFPS || fps > MaxFPS {
			t.Fatalf("fps %v outside [%v, %v]", fps, MinFPS, MaxFPS)
		}
		prev = fps
	}
}

func TestPredictFPSUnknownResolutionUsesBaseline(t *testing.T) {
	spec := testSpec()
	spec.GPUBenchmark = 30000
	baseline := PredictFPS(spec)

	spec.TargetResolution = "8k"
	if got := PredictFPS(spec); got != baseline {
		t.Fatalf("expected baseline %v, got %v", baseline, got)
	}
}
