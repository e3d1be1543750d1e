package normalizer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cast"

	"github.com/siliconsage/build-engine/internal/models"
)

// Fallbacks used when neither a flat field nor a component record supplies a value.
const (
	DefaultCPUCores     = 6
	DefaultCPUClockGHz  = 3.5
	DefaultCPUBoostGHz  = 4.0
	DefaultCPUTDPW      = 65.0
	DefaultGPUMemoryGB  = 8.0
	DefaultGPUClockMHz  = 1500.0
	GPUWattsPerMemoryGB = 30.0
	DefaultRAMGB        = 16
	DefaultRAMSpeedMHz  = 3200
	DefaultPSUWattageW  = 650.0
)

// Normalizer turns a partial build description into a complete BuildSpec.
type Normalizer struct {
	logger *slog.Logger
}

// New constructs a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

type input struct {
	flat    map[string]any
	cpu     record
	gpu     record
	board   record
	ram     record
	storage record
	psu     record
	assumed []string
}

// Normalize accepts flat BuildSpec fields, raw component records, or both; flat fields win.
// Missing values fall back to documented defaults and are listed in BuildSpec.Assumed. Only
// values that are present but unusable (negative, non-numeric, wrong shape) produce a *FieldError.
func (n *Normalizer) Normalize(raw map[string]any) (models.BuildSpec, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	in := &input{flat: raw}

	var err error
	records := []struct {
		dst  *record
		keys []string
	}{
		{&in.cpu, []string{"cpu", "processor"}},
		{&in.gpu, []string{"gpu", "video_card", "videoCard"}},
		{&in.board, []string{"motherboard", "mobo"}},
		{&in.ram, []string{"ram", "memory"}},
		{&in.storage, []string{"storage"}},
		{&in.psu, []string{"psu", "power_supply", "powerSupply"}},
	}
	for _, r := range records {
		if *r.dst, err = loadRecord(raw, r.keys...); err != nil {
			return models.BuildSpec{}, err
		}
	}

	var spec models.BuildSpec
	steps := []func(*models.BuildSpec) error{
		in.cpuFields,
		in.gpuFields,
		in.memoryFields,
		in.storageFields,
		in.resolutionField,
		in.powerFields,
		in.boardFields,
	}
	for _, step := range steps {
		if err := step(&spec); err != nil {
			return models.BuildSpec{}, err
		}
	}
	spec.Assumed = in.assumed

	if len(spec.Assumed) > 0 {
		n.logger.Debug("build normalized with defaults", slog.Any("assumed", spec.Assumed))
	}
	return spec, nil
}

func (in *input) assume(field string) {
	in.assumed = append(in.assumed, field)
}

func (in *input) flatNumber(keys ...string) (float64, bool, error) {
	return number(in.flat, "", keys...)
}

func (in *input) flatText(keys ...string) string {
	return text(in.flat, keys...)
}

// first returns the first source that yields a value.
func first(sources ...func() (float64, bool, error)) (float64, bool, error) {
	for _, source := range sources {
		v, ok, err := source()
		if err != nil || ok {
			return v, ok, err
		}
	}
	return 0, false, nil
}

func (in *input) cpuFields(spec *models.BuildSpec) error {
	clock, hasClock, err := first(
		func() (float64, bool, error) { return in.flatNumber("cpu_clock", "cpu_clock_ghz", "cpuClock") },
		func() (float64, bool, error) { return in.cpu.number("core_clock", "coreClock") },
	)
	if err != nil {
		return err
	}
	clock = ghz(clock)

	bench, ok, err := first(
		func() (float64, bool, error) { return in.flatNumber("cpu_benchmark", "cpuBenchmark") },
		func() (float64, bool, error) { return in.cpu.number("benchmark_score", "benchmarkScore") },
	)
	if err != nil {
		return err
	}
	if !ok {
		cores, hasCores, err := in.cpu.number("core_count", "coreCount", "cores")
		if err != nil {
			return err
		}
		if !hasCores {
			cores = DefaultCPUCores
		}
		c := clock
		if !hasClock {
			c = DefaultCPUClockGHz
		}
		bench = cores * c * 1000
		if !finite(bench) {
			field := in.cpu.path + ".core_count"
			if cores < c {
				field = in.clockField()
			}
			return &FieldError{Field: field, Value: bench, Reason: "out of range"}
		}
		if !hasCores && !hasClock {
			in.assume("cpu_benchmark")
		}
	}
	spec.CPUBenchmark = bench

	tdp, ok, err := first(
		func() (float64, bool, error) { return in.flatNumber("cpu_tdp_w", "cpu_tdp", "cpuTdp", "cpuTdpW") },
		func() (float64, bool, error) { return in.cpu.number("tdp") },
	)
	if err != nil {
		return err
	}
	if !ok {
		tdp = DefaultCPUTDPW
		in.assume("cpu_tdp_w")
	}
	spec.CPUTDPW = tdp

	boost, ok, err := first(
		func() (float64, bool, error) {
			return in.flatNumber("cpu_boost_clock_ghz", "cpu_boost_clock", "cpuBoostClockGhz", "cpuBoostClock")
		},
		func() (float64, bool, error) { return in.cpu.number("boost_clock", "boostClock") },
	)
	if err != nil {
		return err
	}
	switch {
	case ok:
		boost = ghz(boost)
	case hasClock:
		boost = clock
	default:
		boost = DefaultCPUBoostGHz
		in.assume("cpu_boost_clock_ghz")
	}
	spec.CPUBoostClockGHz = boost

	spec.CPUMicroarchitecture = in.flatText("cpu_microarchitecture", "cpuMicroarchitecture")
	if spec.CPUMicroarchitecture == "" {
		spec.CPUMicroarchitecture = in.cpu.text("microarchitecture", "microarch")
	}
	return nil
}

// clockField names the source of the CPU core clock for error reports.
func (in *input) clockField() string {
	if _, key, ok := lookup(in.flat, "cpu_clock", "cpu_clock_ghz", "cpuClock"); ok {
		return key
	}
	return in.cpu.path + ".core_clock"
}

func (in *input) gpuFields(spec *models.BuildSpec) error {
	memory, hasMemory, err := in.gpu.number("memory", "memory_gb", "memoryGb", "vram")
	if err != nil {
		return err
	}
	if !hasMemory {
		memory = DefaultGPUMemoryGB
	}

	bench, ok, err := first(
		func() (float64, bool, error) { return in.flatNumber("gpu_benchmark", "gpuBenchmark") },
		func() (float64, bool, error) { return in.gpu.number("benchmark_score", "benchmarkScore") },
	)
	if err != nil {
		return err
	}
	if !ok {
		clock, hasClock, err := in.gpu.number("core_clock", "coreClock")
		if err != nil {
			return err
		}
		if hasClock {
			clock = mhz(clock)
		} else {
			clock = DefaultGPUClockMHz
		}
		bench = memory * clock
		if !finite(bench) {
			field := in.gpu.path + ".memory"
			if memory < clock {
				field = in.gpu.path + ".core_clock"
			}
			return &FieldError{Field: field, Value: bench, Reason: "out of range"}
		}
		if !hasMemory && !hasClock {
			in.assume("gpu_benchmark")
		}
	}
	spec.GPUBenchmark = bench

	tdp, ok, err := first(
		func() (float64, bool, error) { return in.flatNumber("gpu_tdp_w", "gpu_tdp", "gpuTdp", "gpuTdpW") },
		func() (float64, bool, error) { return in.gpu.number("tdp") },
	)
	if err != nil {
		return err
	}
	if !ok {
		tdp = memory * GPUWattsPerMemoryGB
		if !finite(tdp) {
			return &FieldError{Field: in.gpu.path + ".memory", Value: memory, Reason: "out of range"}
		}
		if !hasMemory {
			in.assume("gpu_tdp_w")
		}
	}
	spec.GPUTDPW = tdp

	// Card length is optional; zero means unknown and skips the clearance note.
	length, _, err := first(
		func() (float64, bool, error) { return in.flatNumber("gpu_length_mm", "gpuLengthMm", "gpu_length") },
		func() (float64, bool, error) { return in.gpu.number("length", "length_mm", "lengthMm") },
	)
	if err != nil {
		return err
	}
	spec.GPULengthMM = length
	return nil
}

func (in *input) memoryFields(spec *models.BuildSpec) error {
	capacity, _, err := first(
		func() (float64, bool, error) { return in.flatNumber("ram_gb", "ramGb", "ramGB") },
		func() (float64, bool, error) { return in.ram.number("total_capacity", "totalCapacity", "capacity") },
		in.moduleCapacity,
	)
	if err != nil {
		return err
	}
	ram, ok, err := toInt("ram_gb", capacity)
	if err != nil {
		return err
	}
	if !ok {
		ram = DefaultRAMGB
		in.assume("ram_gb")
	}
	spec.RAMGB = ram

	var speedDDR, speedMHz any
	if v, _, found := in.ram.raw("speed"); found {
		if ddr, clock, isPair := pair(v); isPair {
			speedDDR, speedMHz = ddr, clock
		} else {
			speedMHz = v
		}
	}

	speed, _, err := first(
		func() (float64, bool, error) {
			return in.flatNumber("ram_speed_mhz", "ram_speed", "ramSpeed", "ramSpeedMhz")
		},
		func() (float64, bool, error) { return in.ram.number("speed_mhz", "speedMhz") },
		func() (float64, bool, error) { return optionalNumber(in.ram.path+".speed", speedMHz) },
	)
	if err != nil {
		return err
	}
	ramSpeed, ok, err := toInt("ram_speed_mhz", speed)
	if err != nil {
		return err
	}
	if !ok {
		ramSpeed = DefaultRAMSpeedMHz
		in.assume("ram_speed_mhz")
	}
	spec.RAMSpeedMHz = ramSpeed

	ddr, ok, err := first(
		func() (float64, bool, error) {
			return in.flatNumber("ram_ddr_generation", "ram_ddr", "ramDdrGeneration", "ddr_generation")
		},
		func() (float64, bool, error) { return in.ram.number("speed_ddr", "speedDdr", "ddr") },
		func() (float64, bool, error) { return optionalNumber(in.ram.path+".speed", speedDDR) },
	)
	if err != nil {
		return err
	}
	generation := 0
	if ok {
		if generation, _, err = toInt("ram_ddr_generation", ddr); err != nil {
			return err
		}
	}
	if generation == 0 {
		generation = ddrFromName(in.ram.text("name"))
	}
	spec.RAMDDRGeneration = generation
	return nil
}

func (in *input) moduleCapacity() (float64, bool, error) {
	field := in.ram.path + ".modules"
	if v, _, found := in.ram.raw("modules"); found {
		if c, s, isPair := pair(v); isPair {
			count, hasCount, err := toNumber(field, c)
			if err != nil {
				return 0, false, err
			}
			size, hasSize, err := toNumber(field, s)
			if err != nil {
				return 0, false, err
			}
			if hasCount && hasSize {
				return count * size, true, nil
			}
			return 0, false, nil
		}
	}
	count, hasCount, err := in.ram.number("module_count", "moduleCount")
	if err != nil {
		return 0, false, err
	}
	size, hasSize, err := in.ram.number("module_size", "moduleSize")
	if err != nil {
		return 0, false, err
	}
	if hasCount && hasSize {
		return count * size, true, nil
	}
	return 0, false, nil
}

func optionalNumber(field string, v any) (float64, bool, error) {
	if v == nil {
		return 0, false, nil
	}
	return toNumber(field, v)
}

func ddrFromName(name string) int {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "ddr5"):
		return 5
	case strings.Contains(lower, "ddr4"):
		return 4
	default:
		return 0
	}
}

func (in *input) storageFields(spec *models.BuildSpec) error {
	if v, key, ok := lookup(in.flat, "storage_type", "storageType"); ok {
		storage, err := storageFromValue(key, v)
		if err != nil {
			return err
		}
		spec.StorageType = storage
		return nil
	}

	if in.storage.present() {
		iface := strings.ToLower(in.storage.text("interface") + " " + in.storage.text("form_factor", "formFactor"))
		if strings.Contains(iface, "nvme") || strings.Contains(iface, "pcie") {
			spec.StorageType = models.StorageNVMe
			return nil
		}
		if v, field, ok := in.storage.raw("type"); ok {
			if storage, err := storageFromValue(field, v); err == nil {
				spec.StorageType = storage
				return nil
			}
		}
	}

	spec.StorageType = models.StorageSSD
	in.assume("storage_type")
	return nil
}

// storageFromValue accepts labels ("SSD", "NVMe") or a spindle speed, which marks a hard drive.
func storageFromValue(field string, v any) (models.StorageType, error) {
	if _, isBool := v.(bool); !isBool {
		if rpm, err := cast.ToFloat64E(v); err == nil && rpm > 0 {
			return models.StorageHDD, nil
		}
	}
	label := cast.ToString(v)
	storage, ok := models.ParseStorageType(label)
	if !ok {
		return "", &FieldError{Field: field, Value: v, Reason: "must be one of hdd, ssd, nvme"}
	}
	return storage, nil
}

func (in *input) resolutionField(spec *models.BuildSpec) error {
	v, key, ok := lookup(in.flat, "target_resolution", "targetResolution", "resolution")
	if !ok {
		spec.TargetResolution = models.Resolution1080p
		in.assume("target_resolution")
		return nil
	}
	label := cast.ToString(v)
	resolution, ok := models.ParseResolution(label)
	if !ok {
		return &FieldError{Field: key, Value: v, Reason: "must be one of 1080p, 1440p, 4k"}
	}
	spec.TargetResolution = resolution
	return nil
}

func (in *input) powerFields(spec *models.BuildSpec) error {
	wattage, ok, err := first(
		func() (float64, bool, error) {
			return in.flatNumber("psu_wattage_w", "psu_wattage", "psuWattage", "psuWattageW")
		},
		func() (float64, bool, error) { return in.psu.number("wattage") },
	)
	if err != nil {
		return err
	}
	if !ok {
		wattage = DefaultPSUWattageW
		in.assume("psu_wattage_w")
	}
	spec.PSUWattageW = wattage

	label := in.flatText("psu_efficiency_tier", "psu_efficiency", "psuEfficiency", "psuEfficiencyTier")
	if label == "" {
		label = in.psu.text("efficiency")
	}
	spec.PSUEfficiencyTier = models.ParseEfficiencyTier(label)
	return nil
}

func (in *input) boardFields(spec *models.BuildSpec) error {
	name := in.flatText("motherboard_chipset_or_name", "motherboardChipsetOrName", "mobo_chipset", "motherboard_name")
	if name == "" {
		name = boardName(in.board.text("name"), in.board.text("chipset"))
	}
	spec.MotherboardChipsetOrName = name

	spec.MotherboardSocket = in.flatText("motherboard_socket", "motherboardSocket")
	if spec.MotherboardSocket == "" {
		spec.MotherboardSocket = in.board.text("socket")
	}
	return nil
}

// boardName keeps the chipset visible to the heuristics when the product name omits it.
func boardName(name, chipset string) string {
	switch {
	case chipset == "":
		return name
	case name == "":
		return chipset
	case strings.Contains(strings.ToLower(name), strings.ToLower(chipset)):
		return name
	default:
		return fmt.Sprintf("%s %s", chipset, name)
	}
}
