package normalizer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/siliconsage/build-engine/internal/models"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return raw
}

func TestNormalizeEmptyBuild(t *testing.T) {
	spec, err := New(nil).Normalize(nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if spec.CPUBenchmark != 21000 {
		t.Fatalf("expected default cpu benchmark 21000, got %v", spec.CPUBenchmark)
	}
	if spec.GPUBenchmark != 12000 {
		t.Fatalf("expected default gpu benchmark 12000, got %v", spec.GPUBenchmark)
	}
	if spec.GPUTDPW != 240 || spec.CPUTDPW != DefaultCPUTDPW {
		t.Fatalf("unexpected default tdp cpu=%v gpu=%v", spec.CPUTDPW, spec.GPUTDPW)
	}
	if spec.RAMGB != DefaultRAMGB || spec.RAMSpeedMHz != DefaultRAMSpeedMHz {
		t.Fatalf("unexpected ram defaults %d GB @ %d MHz", spec.RAMGB, spec.RAMSpeedMHz)
	}
	if spec.StorageType != models.StorageSSD || spec.TargetResolution != models.Resolution1080p {
		t.Fatalf("unexpected storage/resolution defaults %s %s", spec.StorageType, spec.TargetResolution)
	}
	if spec.PSUWattageW != DefaultPSUWattageW || spec.PSUEfficiencyTier != models.EfficiencyUnknown {
		t.Fatalf("unexpected psu defaults %v %s", spec.PSUWattageW, spec.PSUEfficiencyTier)
	}
	if spec.CPUBoostClockGHz != DefaultCPUBoostGHz {
		t.Fatalf("expected default boost clock, got %v", spec.CPUBoostClockGHz)
	}
	for _, field := range []string{"cpu_benchmark", "gpu_benchmark", "ram_gb", "psu_wattage_w", "target_resolution"} {
		if !spec.IsAssumed(field) {
			t.Fatalf("expected %s to be marked assumed, got %v", field, spec.Assumed)
		}
	}
}

func TestNormalizeFlatFields(t *testing.T) {
	spec, err := New(nil).Normalize(decode(t, `{
		"cpu_benchmark": 15000,
		"gpu_benchmark": "13000",
		"ram_gb": 32,
		"ram_speed": 6000,
		"storage_type": "NVMe",
		"target_resolution": "1440p",
		"cpu_tdp": 105,
		"gpu_tdp_w": 285,
		"psu_wattage": 850,
		"psu_efficiency": "80+ Gold",
		"mobo_chipset": "B650",
		"motherboard_socket": "AM5",
		"cpu_microarchitecture": "Zen 4",
		"cpu_boost_clock_ghz": 5.4
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	want := models.BuildSpec{
		CPUBenchmark:             15000,
		GPUBenchmark:             13000,
		RAMGB:                    32,
		RAMSpeedMHz:              6000,
		StorageType:              models.StorageNVMe,
		TargetResolution:         models.Resolution1440p,
		CPUTDPW:                  105,
		GPUTDPW:                  285,
		PSUWattageW:              850,
		PSUEfficiencyTier:        models.EfficiencyGold,
		MotherboardChipsetOrName: "B650",
		MotherboardSocket:        "AM5",
		CPUMicroarchitecture:     "Zen 4",
		CPUBoostClockGHz:         5.4,
	}
	if spec.CPUBenchmark != want.CPUBenchmark || spec.GPUBenchmark != want.GPUBenchmark ||
		spec.RAMGB != want.RAMGB || spec.RAMSpeedMHz != want.RAMSpeedMHz ||
		spec.StorageType != want.StorageType || spec.TargetResolution != want.TargetResolution ||
		spec.CPUTDPW != want.CPUTDPW || spec.GPUTDPW != want.GPUTDPW ||
		spec.PSUWattageW != want.PSUWattageW || spec.PSUEfficiencyTier != want.PSUEfficiencyTier ||
		spec.MotherboardChipsetOrName != want.MotherboardChipsetOrName ||
		spec.MotherboardSocket != want.MotherboardSocket ||
		spec.CPUMicroarchitecture != want.CPUMicroarchitecture ||
		spec.CPUBoostClockGHz != want.CPUBoostClockGHz {
		t.Fatalf("unexpected spec:\n got %+v\nwant %+v", spec, want)
	}
	if len(spec.Assumed) != 0 {
		t.Fatalf("expected nothing assumed, got %v", spec.Assumed)
	}
}

func TestNormalizeCatalogRecords(t *testing.T) {
	spec, err := New(nil).Normalize(decode(t, `{
		"cpu": {"name": "AMD Ryzen 7 7800X3D", "core_count": 8, "core_clock": 4.2, "boost_clock": 5, "microarchitecture": "Zen 4", "tdp": 120},
		"video_card": {"name": "RTX 4070", "chipset": "GeForce RTX 4070", "memory": 12, "core_clock": 1920},
		"motherboard": {"name": "MSI MAG TOMAHAWK WIFI", "chipset": "B650", "socket": "AM5"},
		"memory": {"name": "Vengeance 32GB", "speed": [5, 6000], "modules": [2, 16]},
		"storage": [{"type": "SSD", "interface": "M.2 PCIe 4.0 X4"}, {"type": 7200}],
		"power_supply": {"wattage": 750, "efficiency": "gold"}
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if spec.CPUBenchmark != 8*4.2*1000 {
		t.Fatalf("expected derived cpu benchmark, got %v", spec.CPUBenchmark)
	}
	if spec.GPUBenchmark != 12*1920 || spec.GPUTDPW != 360 {
		t.Fatalf("expected derived gpu benchmark/tdp, got %v/%v", spec.GPUBenchmark, spec.GPUTDPW)
	}
	if spec.CPUTDPW != 120 || spec.CPUBoostClockGHz != 5 || spec.CPUMicroarchitecture != "Zen 4" {
		t.Fatalf("unexpected cpu fields %+v", spec)
	}
	if spec.RAMGB != 32 || spec.RAMSpeedMHz != 6000 || spec.RAMDDRGeneration != 5 {
		t.Fatalf("unexpected memory fields %d GB @ %d MHz DDR%d", spec.RAMGB, spec.RAMSpeedMHz, spec.RAMDDRGeneration)
	}
	if spec.StorageType != models.StorageNVMe {
		t.Fatalf("expected nvme from interface, got %s", spec.StorageType)
	}
	if spec.MotherboardChipsetOrName != "B650 MSI MAG TOMAHAWK WIFI" || spec.MotherboardSocket != "AM5" {
		t.Fatalf("unexpected board fields %q %q", spec.MotherboardChipsetOrName, spec.MotherboardSocket)
	}
	if spec.PSUWattageW != 750 || spec.PSUEfficiencyTier != models.EfficiencyGold {
		t.Fatalf("unexpected psu fields %v %s", spec.PSUWattageW, spec.PSUEfficiencyTier)
	}
	if spec.IsAssumed("psu_wattage_w") || spec.IsAssumed("cpu_benchmark") {
		t.Fatalf("supplied values must not be marked assumed: %v", spec.Assumed)
	}
}

func TestNormalizeFlatFieldsWinOverRecords(t *testing.T) {
	spec, err := New(nil).Normalize(decode(t, `{
		"cpu_benchmark": 30000,
		"cpu": {"core_count": 4, "core_clock": 3.0, "benchmark_score": 9000},
		"psu_wattage_w": 1000,
		"psu": {"wattage": 450}
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if spec.CPUBenchmark != 30000 || spec.PSUWattageW != 1000 {
		t.Fatalf("flat fields must win, got cpu=%v psu=%v", spec.CPUBenchmark, spec.PSUWattageW)
	}
}

func TestNormalizeCatalogIrregularities(t *testing.T) {
	spec, err := New(nil).Normalize(decode(t, `{
		"cpu": {"benchmark_score": [18000], "core_clock": 3600},
		"gpu": {"memory": "8", "core_clock": 2.5, "tdp": null},
		"ram": {"module_count": 2, "module_size": 8, "speed_mhz": 3600, "speed_ddr": 4},
		"storage": {"type": 7200},
		"target_resolution": "QHD"
	}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if spec.CPUBenchmark != 18000 {
		t.Fatalf("expected unwrapped benchmark score, got %v", spec.CPUBenchmark)
	}
	if spec.CPUBoostClockGHz != 3.6 {
		t.Fatalf("expected boost to fall back to the MHz core clock, got %v", spec.CPUBoostClockGHz)
	}
	if spec.GPUBenchmark != 20000 || spec.GPUTDPW != 240 {
		t.Fatalf("expected GHz clock and string memory to coerce, got %v/%v", spec.GPUBenchmark, spec.GPUTDPW)
	}
	if spec.RAMGB != 16 || spec.RAMSpeedMHz != 3600 || spec.RAMDDRGeneration != 4 {
		t.Fatalf("unexpected memory fields %d/%d/%d", spec.RAMGB, spec.RAMSpeedMHz, spec.RAMDDRGeneration)
	}
	if spec.StorageType != models.StorageHDD {
		t.Fatalf("expected spindle speed to mean hdd, got %s", spec.StorageType)
	}
	if spec.TargetResolution != models.Resolution1440p {
		t.Fatalf("expected QHD to map to 1440p, got %s", spec.TargetResolution)
	}
}

func TestNormalizeZeroIsMissing(t *testing.T) {
	spec, err := New(nil).Normalize(map[string]any{"psu_wattage_w": 0.0, "ram_gb": 0})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if spec.PSUWattageW != DefaultPSUWattageW || !spec.IsAssumed("psu_wattage_w") {
		t.Fatalf("expected zero wattage to default, got %v %v", spec.PSUWattageW, spec.Assumed)
	}
	if spec.RAMGB != DefaultRAMGB {
		t.Fatalf("expected zero ram to default, got %d", spec.RAMGB)
	}
}

func TestNormalizeFractionalRAMIsMissing(t *testing.T) {
	spec, err := New(nil).Normalize(map[string]any{"ram_gb": 0.3, "ram_speed_mhz": 0.4})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if spec.RAMGB != DefaultRAMGB || !spec.IsAssumed("ram_gb") {
		t.Fatalf("expected 0.3 GB to default, got %d %v", spec.RAMGB, spec.Assumed)
	}
	if spec.RAMSpeedMHz != DefaultRAMSpeedMHz {
		t.Fatalf("expected sub-MHz speed to default, got %d", spec.RAMSpeedMHz)
	}
}

func TestNormalizeGPULength(t *testing.T) {
	spec, err := New(nil).Normalize(decode(t, `{"gpu": {"memory": 24, "core_clock": 2230, "length": 358}}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if spec.GPULengthMM != 358 {
		t.Fatalf("expected card length from the gpu record, got %v", spec.GPULengthMM)
	}

	spec, err = New(nil).Normalize(nil)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if spec.GPULengthMM != 0 || spec.IsAssumed("gpu_length_mm") {
		t.Fatalf("unknown length must stay zero and unassumed, got %v %v", spec.GPULengthMM, spec.Assumed)
	}
}

func TestNormalizeRejectsUnusableValues(t *testing.T) {
	cases := map[string]struct {
		raw   map[string]any
		field string
	}{
		"negative wattage": {raw: map[string]any{"psu_wattage_w": -650.0}, field: "psu_wattage_w"},
		"non numeric":      {raw: map[string]any{"cpu_benchmark": "fast"}, field: "cpu_benchmark"},
		"boolean":          {raw: map[string]any{"ram_gb": true}, field: "ram_gb"},
		"record field":     {raw: map[string]any{"cpu": map[string]any{"core_count": "eight"}}, field: "cpu.core_count"},
		"record shape":     {raw: map[string]any{"gpu": "RTX 4090"}, field: "gpu"},
		"resolution":       {raw: map[string]any{"target_resolution": "8k"}, field: "target_resolution"},
		"storage":          {raw: map[string]any{"storage_type": "tape"}, field: "storage_type"},
		"huge ram":         {raw: map[string]any{"ram_gb": 1e19}, field: "ram_gb"},
		"huge ram speed":   {raw: map[string]any{"ram_speed_mhz": 1e12}, field: "ram_speed_mhz"},
		"gpu overflow":     {raw: map[string]any{"gpu": map[string]any{"memory": 1e306}}, field: "gpu.memory"},
		"cpu overflow": {
			raw:   map[string]any{"cpu": map[string]any{"core_count": 1e306, "core_clock": 4.0}},
			field: "cpu.core_count",
		},
	}
	for name, tc := range cases {
		_, err := New(nil).Normalize(tc.raw)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("%s: expected FieldError, got %v", name, err)
		}
		if fieldErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", name, tc.field, fieldErr.Field)
		}
	}
}

func TestNormalizePart(t *testing.T) {
	part, err := New(nil).NormalizePart(decode(t, `{
		"name": " AMD Ryzen 5 5600 ",
		"price": "149",
		"benchmark_score": [15000],
		"category": "Processor"
	}`))
	if err != nil {
		t.Fatalf("normalize part: %v", err)
	}
	if part.Name != "AMD Ryzen 5 5600" || part.Price != 149 || part.BenchmarkScore != 15000 {
		t.Fatalf("unexpected part %+v", part)
	}
	if part.Category != models.CategoryCPU {
		t.Fatalf("expected processor to map to cpu, got %s", part.Category)
	}

	part, err = New(nil).NormalizePart(map[string]any{"benchmark": 5600.0, "category": "PSU"})
	if err != nil {
		t.Fatalf("normalize part: %v", err)
	}
	if part.Price != 0 || part.Category != "psu" {
		t.Fatalf("expected missing price and lowercased category, got %+v", part)
	}
}

func TestNormalizePartRejectsUnusableValues(t *testing.T) {
	cases := map[string]struct {
		raw   map[string]any
		field string
	}{
		"no category":    {raw: map[string]any{"benchmark_score": 1000.0}, field: "category"},
		"no benchmark":   {raw: map[string]any{"category": "gpu"}, field: "benchmark_score"},
		"zero benchmark": {raw: map[string]any{"category": "gpu", "benchmark_score": 0.0}, field: "benchmark_score"},
		"bad benchmark":  {raw: map[string]any{"category": "gpu", "benchmark_score": "fast"}, field: "benchmark_score"},
		"negative price": {raw: map[string]any{"category": "gpu", "benchmark_score": 1000.0, "price": -5.0}, field: "price"},
	}
	for name, tc := range cases {
		_, err := New(nil).NormalizePart(tc.raw)
		var fieldErr *FieldError
		if !errors.As(err, &fieldErr) {
			t.Fatalf("%s: expected FieldError, got %v", name, err)
		}
		if fieldErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", name, tc.field, fieldErr.Field)
		}
	}
}
