package types

import (
	"fmt"
	"math"
)

// Validation constraint constants. The empirical formulas are only
// calibrated inside these ranges, so out-of-range inputs are rejected
// rather than clamped: a clamped input would silently produce a
// plausible-looking but out-of-domain result.
const (
	MinRainfallMM = 200.0
	MaxRainfallMM = 800.0
	MinCoverPct   = 0.0
	MaxCoverPct   = 100.0
)

// InputMetadata defines the canonical rules for a simulation input variable.
type InputMetadata struct {
	ID          string     `json:"id"`
	Unit        string     `json:"unit"`
	Range       [2]float64 `json:"valid_range,omitempty"`
	Values      []string   `json:"values,omitempty"`
	Description string     `json:"description"`
}

// StandardInputs defines the authoritative constraints for the simulator.
// All components MUST validate against these ranges.
var StandardInputs = map[string]InputMetadata{
	"rainfall_mm":    {ID: "rainfall_mm", Unit: "mm", Range: [2]float64{MinRainfallMM, MaxRainfallMM}, Description: "Annual rainfall before climate adjustment"},
	"cover_pct":      {ID: "cover_pct", Unit: "percent", Range: [2]float64{MinCoverPct, MaxCoverPct}, Description: "Ground area covered by the cover crop"},
	"mowing":         {ID: "mowing", Unit: "enum", Values: []string{string(MowingEarly), string(MowingLate), string(MowingUnmowed)}, Description: "When the cover crop is mowed, if at all"},
	"climate_change": {ID: "climate_change", Unit: "bool", Description: "Apply the mid-century climate scenario (-10% rainfall, higher-intensity storms)"},
}

// ValidateSimulationInput checks every field of in against the calibrated
// domain. It returns an *AppError identifying the offending field and its
// permitted range, or nil when all fields are in range.
func ValidateSimulationInput(in SimulationInput) *AppError {
	if !finite(in.RainfallMM) || in.RainfallMM < MinRainfallMM || in.RainfallMM > MaxRainfallMM {
		return NewAppErrorWithDetails(
			ErrCodeValidationRainfallRange,
			fmt.Sprintf("rainfall_mm must be between %.0f and %.0f", MinRainfallMM, MaxRainfallMM),
			nil,
			map[string]any{"field": "rainfall_mm", "min": MinRainfallMM, "max": MaxRainfallMM, "got": in.RainfallMM},
		)
	}
	if !finite(in.CoverPct) || in.CoverPct < MinCoverPct || in.CoverPct > MaxCoverPct {
		return NewAppErrorWithDetails(
			ErrCodeValidationCoverRange,
			fmt.Sprintf("cover_pct must be between %.0f and %.0f", MinCoverPct, MaxCoverPct),
			nil,
			map[string]any{"field": "cover_pct", "min": MinCoverPct, "max": MaxCoverPct, "got": in.CoverPct},
		)
	}
	if in.Mowing == "" {
		return NewAppErrorWithDetails(
			ErrCodeValidationMissingField,
			"mowing is required",
			nil,
			map[string]any{"field": "mowing"},
		)
	}
	if !in.Mowing.Valid() {
		return NewAppErrorWithDetails(
			ErrCodeValidationMowingTiming,
			fmt.Sprintf("mowing must be one of: %s, %s, %s", MowingEarly, MowingLate, MowingUnmowed),
			nil,
			map[string]any{"field": "mowing", "got": string(in.Mowing)},
		)
	}
	return nil
}

// finite reports whether v is an ordinary number. NaN compares false
// against both range bounds, so the range checks alone would let it
// through into the engine.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
