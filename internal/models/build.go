package models

import "strings"

// StorageType enumerates the primary storage class of a build.
type StorageType string

const (
	StorageHDD  StorageType = "hdd"
	StorageSSD  StorageType = "ssd"
	StorageNVMe StorageType = "nvme"
)

// Resolution enumerates supported target resolutions.
type Resolution string

const (
	Resolution1080p Resolution = "1080p"
	Resolution1440p Resolution = "1440p"
	Resolution4K    Resolution = "4k"
)

// EfficiencyTier captures the 80 PLUS rating of a power supply.
type EfficiencyTier string

const (
	EfficiencyUnknown  EfficiencyTier = "unknown"
	EfficiencyUnrated  EfficiencyTier = "unrated"
	EfficiencyBronze   EfficiencyTier = "bronze"
	EfficiencySilver   EfficiencyTier = "silver"
	EfficiencyGold     EfficiencyTier = "gold"
	EfficiencyPlatinum EfficiencyTier = "platinum"
	EfficiencyTitanium EfficiencyTier = "titanium"
)

// BuildSpec is the canonical numeric snapshot of the build that gets evaluated.
// Every field is populated; Assumed lists the fields that fell back to defaults.
type BuildSpec struct {
	CPUBenchmark             float64        `json:"cpu_benchmark"`
	GPUBenchmark             float64        `json:"gpu_benchmark"`
	RAMGB                    int            `json:"ram_gb"`
	RAMSpeedMHz              int            `json:"ram_speed_mhz"`
	RAMDDRGeneration         int            `json:"ram_ddr_generation"`
	StorageType              StorageType    `json:"storage_type"`
	TargetResolution         Resolution     `json:"target_resolution"`
	CPUTDPW                  float64        `json:"cpu_tdp_w"`
	GPUTDPW                  float64        `json:"gpu_tdp_w"`
	PSUWattageW              float64        `json:"psu_wattage_w"`
	PSUEfficiencyTier        EfficiencyTier `json:"psu_efficiency_tier"`
	MotherboardChipsetOrName string         `json:"motherboard_chipset_or_name"`
	MotherboardSocket        string         `json:"motherboard_socket"`
	CPUMicroarchitecture     string         `json:"cpu_microarchitecture"`
	CPUBoostClockGHz         float64        `json:"cpu_boost_clock_ghz"`
	GPULengthMM              float64        `json:"gpu_length_mm"`
	Assumed                  []string       `json:"assumed_fields,omitempty"`
}

// IsAssumed reports whether the named field was defaulted by the normalizer.
func (s BuildSpec) IsAssumed(field string) bool {
	for _, f := range s.Assumed {
		if f == field {
			return true
		}
	}
	return false
}

// ParseResolution maps loose resolution labels onto a Resolution.
func ParseResolution(value string) (Resolution, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1080p", "1080", "fhd", "1920x1080":
		return Resolution1080p, true
	case "1440p", "1440", "qhd", "2k", "2560x1440":
		return Resolution1440p, true
	case "4k", "2160p", "2160", "uhd", "3840x2160":
		return Resolution4K, true
	default:
		return "", false
	}
}

// ParseStorageType maps catalog storage labels onto a StorageType.
func ParseStorageType(value string) (StorageType, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return "", false
	case strings.Contains(v, "nvme"):
		return StorageNVMe, true
	case strings.Contains(v, "ssd"), strings.Contains(v, "solid"):
		return StorageSSD, true
	case strings.Contains(v, "hdd"), strings.Contains(v, "rpm"), strings.Contains(v, "hard"):
		return StorageHDD, true
	default:
		return "", false
	}
}

// ParseEfficiencyTier maps catalog efficiency labels ("80+ Gold", "plus", "Platinum") onto a tier.
// Unrecognised labels resolve to EfficiencyUnknown.
func ParseEfficiencyTier(value string) EfficiencyTier {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return EfficiencyUnknown
	case strings.Contains(v, "titanium"):
		return EfficiencyTitanium
	case strings.Contains(v, "platinum"):
		return EfficiencyPlatinum
	case strings.Contains(v, "gold"):
		return EfficiencyGold
	case strings.Contains(v, "silver"):
		return EfficiencySilver
	case strings.Contains(v, "bronze"):
		return EfficiencyBronze
	case v == "unrated", v == "none", v == "plus", v == "80+", v == "80 plus", v == "80plus", v == "white", v == "standard":
		return EfficiencyUnrated
	default:
		return EfficiencyUnknown
	}
}
