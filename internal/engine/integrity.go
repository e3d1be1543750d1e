package engine

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/siliconsage/build-engine/internal/models"
)

const (
	systemOverheadW       = 50.0
	psuHeadroomFactor     = 1.2
	efficiencyLoadW       = 550.0
	gpuThermalNoteW       = 350.0
	gpuClearanceNoteMM    = 350.0
	highEndBoostGHz       = 4.5
	highEndCPUTDPW        = 100.0
	entryCPUTDPW          = 65.0
	psuDeficitBase        = 25
	psuDeficitPerStep     = 5
	psuDeficitCap         = 60
	psuTightPenalty       = 10
	efficiencyPenalty     = 5
	socketMismatchPenalty = 30
	memoryMismatchPenalty = 20
	vrmPenalty            = 15
)

type hardwareTier int

const (
	tierUnknown hardwareTier = iota
	tierEntry
	tierMid
	tierHigh
)

func (t hardwareTier) String() string {
	switch t {
	case tierEntry:
		return "entry-level"
	case tierMid:
		return "mid-range"
	case tierHigh:
		return "high-end"
	default:
		return "unknown"
	}
}

// Chipset series letter to board tier (A620 entry, B650/H610 mid, X670/Z790 high).
var chipsetTiers = map[byte]hardwareTier{
	'A': tierEntry,
	'B': tierMid,
	'H': tierMid,
	'Q': tierMid,
	'X': tierHigh,
	'Z': tierHigh,
	'W': tierHigh,
}

var chipsetPattern = regexp.MustCompile(`(?i)\b([abhqxzw])\d{3}[a-z]{0,2}\b`)

// Name tokens that pin a board's memory generation.
var memoryTokens = map[string]int{
	"ddr4": 4,
	"d4":   4,
	"ddr5": 5,
	"d5":   5,
}

// IntegrityReport is the outcome of the integrity checklist.
type IntegrityReport struct {
	Score    int
	Status   string
	Warnings []string
	Notes    []string
}

type checkOutcome struct {
	warning string
	penalty int
	notes   []string
}

type integrityCheck struct {
	name string
	run  func(models.BuildSpec) checkOutcome
}

// IntegrityScorer runs the fixed compatibility/stability checklist over a BuildSpec.
type IntegrityScorer struct {
	platforms *PlatformTable
}

// NewIntegrityScorer constructs a scorer backed by the given platform table.
func NewIntegrityScorer(platforms *PlatformTable) *IntegrityScorer {
	if platforms == nil {
		platforms = DefaultPlatformTable()
	}
	return &IntegrityScorer{platforms: platforms}
}

func (s *IntegrityScorer) checks() []integrityCheck {
	return []integrityCheck{
		{name: "psu_headroom", run: checkPSUHeadroom},
		{name: "psu_efficiency", run: checkPSUEfficiency},
		{name: "socket", run: s.checkSocket},
		{name: "memory_generation", run: s.checkMemoryGeneration},
		{name: "vrm_thermal", run: checkVRM},
		{name: "gpu_thermal", run: checkGPUThermal},
		{name: "gpu_clearance", run: checkGPUClearance},
	}
}

// Score evaluates every check in order. Warnings keep evaluation order and the score stays in [0, 100].
func (s *IntegrityScorer) Score(spec models.BuildSpec) IntegrityReport {
	score := 100
	warnings := make([]string, 0)
	notes := make([]string, 0)

	for _, check := range s.checks() {
		outcome := check.run(spec)
		if outcome.warning != "" {
			warnings = append(warnings, outcome.warning)
			score -= outcome.penalty
		}
		notes = append(notes, outcome.notes...)
	}

	if len(warnings) == 0 {
		notes = append(notes, "All stability checks passed.")
	}
	if len(spec.Assumed) > 0 {
		notes = append(notes, fmt.Sprintf("Estimated values used for: %s.", strings.Join(spec.Assumed, ", ")))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return IntegrityReport{
		Score:    score,
		Status:   integrityStatus(score),
		Warnings: warnings,
		Notes:    notes,
	}
}

// RequiredWattage is the estimated full-load draw: CPU + GPU + fixed overhead for RAM, storage and fans.
func RequiredWattage(spec models.BuildSpec) float64 {
	return spec.CPUTDPW + spec.GPUTDPW + systemOverheadW
}

func checkPSUHeadroom(spec models.BuildSpec) checkOutcome {
	required := RequiredWattage(spec)
	recommended := required * psuHeadroomFactor

	if spec.IsAssumed("psu_wattage_w") {
		return checkOutcome{notes: []string{fmt.Sprintf(
			"PSU wattage not supplied; headroom check skipped (estimated load %.0fW, recommended %.0fW+).",
			required, math.Ceil(recommended))}}
	}

	psu := spec.PSUWattageW
	switch {
	case psu < required:
		return checkOutcome{
			warning: fmt.Sprintf("PSU %.0fW is below the estimated system load of %.0fW. Recommended: %.0fW+.",
				psu, required, math.Ceil(recommended)),
			penalty: psuDeficitPenalty(required, psu),
		}
	case psu < recommended:
		return checkOutcome{
			warning: fmt.Sprintf("PSU headroom is tight: %.0fW supply for a %.0fW load. Recommended: %.0fW+.",
				psu, required, math.Ceil(recommended)),
			penalty: psuTightPenalty,
		}
	default:
		return checkOutcome{notes: []string{fmt.Sprintf(
			"Healthy PSU headroom: %.0fW supply for a %.0fW estimated load.", psu, required)}}
	}
}

// psuDeficitPenalty grows by a fixed step for every started 10% of missing wattage.
func psuDeficitPenalty(required, psu float64) int {
	deficit := (required - psu) / required
	steps := int(math.Ceil(deficit*10 - 1e-9))
	if steps < 1 {
		steps = 1
	}
	penalty := psuDeficitBase + psuDeficitPerStep*steps
	if penalty > psuDeficitCap {
		penalty = psuDeficitCap
	}
	return penalty
}

func checkPSUEfficiency(spec models.BuildSpec) checkOutcome {
	tier := spec.PSUEfficiencyTier
	if tier != models.EfficiencyUnrated && tier != models.EfficiencyBronze {
		return checkOutcome{}
	}
	required := RequiredWattage(spec)
	if required <= efficiencyLoadW {
		return checkOutcome{}
	}
	return checkOutcome{
		warning: fmt.Sprintf("A %s PSU under a %.0fW load is a stability risk. Consider Gold or better.",
			efficiencyLabel(tier), required),
		penalty: efficiencyPenalty,
	}
}

func efficiencyLabel(tier models.EfficiencyTier) string {
	if tier == models.EfficiencyUnrated {
		return "non-rated"
	}
	return "80+ " + strings.ToUpper(string(tier[:1])) + string(tier[1:])
}

func (s *IntegrityScorer) checkSocket(spec models.BuildSpec) checkOutcome {
	cpuSocket, ok := s.platforms.SocketFor(spec.CPUMicroarchitecture)
	if !ok {
		return checkOutcome{}
	}
	boardSocket := CanonicalSocket(spec.MotherboardSocket)
	if boardSocket == "" {
		return checkOutcome{}
	}
	if cpuSocket != boardSocket {
		return checkOutcome{
			warning: fmt.Sprintf("CPU socket (%s, from %s) does not match motherboard socket (%s).",
				cpuSocket, spec.CPUMicroarchitecture, boardSocket),
			penalty: socketMismatchPenalty,
		}
	}
	return checkOutcome{notes: []string{fmt.Sprintf("CPU and motherboard share socket %s.", cpuSocket)}}
}

func (s *IntegrityScorer) checkMemoryGeneration(spec models.BuildSpec) checkOutcome {
	ram := spec.RAMDDRGeneration
	if ram != 4 && ram != 5 {
		return checkOutcome{}
	}
	board, ok := memoryFromName(spec.MotherboardChipsetOrName)
	if !ok {
		if gens := s.platforms.MemoryFor(spec.MotherboardSocket); len(gens) == 1 {
			board, ok = gens[0], true
		}
	}
	if !ok {
		return checkOutcome{}
	}
	if board != ram {
		return checkOutcome{
			warning: fmt.Sprintf("DDR%d memory is not compatible with a DDR%d motherboard.", ram, board),
			penalty: memoryMismatchPenalty,
		}
	}
	return checkOutcome{notes: []string{fmt.Sprintf("Memory generation matches the motherboard (DDR%d).", ram)}}
}

// memoryFromName infers a board's DDR generation from its name tokens. Names that mention
// both or neither generation are ambiguous.
func memoryFromName(name string) (int, bool) {
	found := make(map[int]struct{})
	for _, token := range tokenize(name) {
		if gen, ok := memoryTokens[token]; ok {
			found[gen] = struct{}{}
		}
	}
	if len(found) != 1 {
		return 0, false
	}
	for gen := range found {
		return gen, true
	}
	return 0, false
}

func tokenize(value string) []string {
	return strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func cpuTier(spec models.BuildSpec) hardwareTier {
	switch {
	case spec.CPUBoostClockGHz > highEndBoostGHz || spec.CPUTDPW > highEndCPUTDPW:
		return tierHigh
	case spec.CPUTDPW < entryCPUTDPW:
		return tierEntry
	default:
		return tierMid
	}
}

func boardTier(name string) (hardwareTier, string) {
	match := chipsetPattern.FindString(name)
	if match == "" {
		return tierUnknown, ""
	}
	chipset := strings.ToUpper(match)
	return chipsetTiers[chipset[0]], chipset
}

func checkVRM(spec models.BuildSpec) checkOutcome {
	board, chipset := boardTier(spec.MotherboardChipsetOrName)
	if board == tierUnknown {
		return checkOutcome{}
	}
	switch cpu := cpuTier(spec); {
	case cpu == tierHigh && board == tierEntry:
		return checkOutcome{
			warning: fmt.Sprintf("High-end CPU on an entry-level %s motherboard risks VRM throttling.", chipset),
			penalty: vrmPenalty,
		}
	case cpu == tierEntry && board == tierHigh:
		return checkOutcome{notes: []string{fmt.Sprintf(
			"The %s motherboard is more than this CPU needs; a cheaper board would perform the same.", chipset)}}
	default:
		return checkOutcome{}
	}
}

func checkGPUThermal(spec models.BuildSpec) checkOutcome {
	if spec.GPUTDPW <= gpuThermalNoteW {
		return checkOutcome{}
	}
	return checkOutcome{notes: []string{fmt.Sprintf(
		"GPU draws about %.0fW; plan case airflow for the extra heat.", spec.GPUTDPW)}}
}

// checkGPUClearance flags cards longer than most mid-tower cases accept. Unknown length is skipped.
func checkGPUClearance(spec models.BuildSpec) checkOutcome {
	if spec.GPULengthMM <= gpuClearanceNoteMM {
		return checkOutcome{}
	}
	return checkOutcome{notes: []string{fmt.Sprintf(
		"Large GPU (%.0fmm); verify the case supports cards of this length.", spec.GPULengthMM)}}
}

func integrityStatus(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Solid"
	case score >= 60:
		return "Acceptable"
	default:
		return "Unstable"
	}
}
