// Package engine implements the olive-grove water-balance calculation.
// It is a pure, single-pass arithmetic pipeline: a SimulationInput is mapped
// through a fixed chain of empirical formulas to runoff, evaporation,
// transpiration, net stored water, an estimated yield, and a 20-year soil
// erosion projection. There is no state and no I/O; identical inputs always
// produce bit-identical results.
//
// Callers are expected to validate inputs against the calibrated domain
// (types.ValidateSimulationInput) before invoking Compute. The formulas
// themselves are total over the documented ranges.
package engine

import (
	"grovesim/internal/types"
)

// Empirical model constants. The references come from the calibration the
// simulator was built around: a 50%-cover reference stand for transpiration
// and a 30%-cover mowed stand saving 16.5 mm of evaporation.
const (
	// Climate adjustment (mid-century scenario): -10% total rainfall,
	// higher-intensity storms raise the base runoff fraction.
	climateRainfallFactor = 0.9
	baseRunoffPct         = 0.20
	baseRunoffPctClimate  = 0.30

	// Every 10 points of cover improves infiltration by one percentage
	// point of the runoff fraction, down to a 5% floor.
	runoffReductionPer10Pct = 0.01
	minRunoffPct            = 0.05

	// Bare-soil evaporation and the mulch savings for a mowed stand.
	baseEvaporationMM  = 120.0
	minEvaporationMM   = 30.0
	mulchSavingsRefMM  = 16.5
	mulchSavingsRefPct = 30.0

	// Transpiration at the 50%-cover reference stand, by mowing timing.
	// Unmowed carries a penalty for uncontrolled growth.
	transpirationRefPct       = 50.0
	transpirationEarlyRefMM   = 70.0
	transpirationLateRefMM    = 110.0
	transpirationUnmowedRefMM = 150.0

	// Yield regression: y = 10x - 1300, floored at zero.
	yieldSlope     = 10.0
	yieldIntercept = 1300.0

	// Annual soil loss (mm/yr) and the 20-year projection parameters.
	erosionBareMMPerYear        = 2.0
	erosionBareClimateMMPerYear = 3.0
	erosionCoveredMMPerYear     = 0.2
	erosionCoverThresholdPct    = 30.0
	soilStartDepthMM            = 1000.0
	soilProjectionYears         = 20

	// The rate at or below which annual soil loss is considered tolerable.
	tolerableErosionMMPerYear = erosionCoveredMMPerYear
)

// Compute runs the full water-balance pipeline for one scenario. Each stage
// consumes only prior stages' outputs and the original input:
//
//  1. Climate adjustment of rainfall and base runoff fraction.
//  2. Runoff from the cover-adjusted runoff fraction.
//  3. Evaporation with mulch savings for mowed stands.
//  4. Transpiration scaled from the 50%-cover reference.
//  5. Net stored water (may be negative; not clamped).
//  6. Yield regression, floored at zero.
//  7. Erosion rate and the 20-year soil-depth series.
func Compute(in types.SimulationInput) types.SimulationResult {
	// 1. Climate adjustment.
	actualRainfall := in.RainfallMM
	runoffPct := baseRunoffPct
	if in.ClimateChange {
		actualRainfall = in.RainfallMM * climateRainfallFactor
		runoffPct = baseRunoffPctClimate
	}

	// 2. Runoff.
	reduction := (in.CoverPct / 10) * runoffReductionPer10Pct
	finalRunoffPct := runoffPct - reduction
	if finalRunoffPct < minRunoffPct {
		finalRunoffPct = minRunoffPct
	}
	runoff := actualRainfall * finalRunoffPct

	// 3. Evaporation. Mulch savings apply only when the stand is mowed;
	// standing residue does not mulch.
	evap := baseEvaporationMM
	if in.Mowing.Mowed() {
		evap -= (in.CoverPct / mulchSavingsRefPct) * mulchSavingsRefMM
	}
	if evap < minEvaporationMM {
		evap = minEvaporationMM
	}

	// 4. Transpiration.
	transp := (in.CoverPct / transpirationRefPct) * transpirationReference(in.Mowing)

	// 5. Net stored water.
	netWater := actualRainfall - runoff - evap - transp

	// 6. Yield.
	yield := yieldSlope*netWater - yieldIntercept
	if yield < 0 {
		yield = 0
	}

	// 7. Erosion.
	rate := erosionRate(in)

	return types.SimulationResult{
		ActualRainfallMM:     actualRainfall,
		RunoffMM:             runoff,
		EvaporationMM:        evap,
		TranspirationMM:      transp,
		NetWaterMM:           netWater,
		YieldKgPerHa:         yield,
		ErosionRateMMPerYear: rate,
		ErosionRisk:          erosionRisk(rate),
		SoilDepth:            projectSoilDepth(rate),
	}
}

// transpirationReference returns the transpiration of the 50%-cover
// reference stand for the given mowing timing. The switch is exhaustive
// over the closed enum; inputs are validated before Compute, so an
// unrecognized value cannot reach here.
func transpirationReference(t types.MowingTiming) float64 {
	switch t {
	case types.MowingEarly:
		return transpirationEarlyRefMM
	case types.MowingLate:
		return transpirationLateRefMM
	default:
		return transpirationUnmowedRefMM
	}
}

// erosionRate is a step function: ground cover at or above 30% dominates
// erosion control regardless of climate scenario.
func erosionRate(in types.SimulationInput) float64 {
	if in.CoverPct >= erosionCoverThresholdPct {
		return erosionCoveredMMPerYear
	}
	if in.ClimateChange {
		return erosionBareClimateMMPerYear
	}
	return erosionBareMMPerYear
}

func erosionRisk(rate float64) types.ErosionRisk {
	if rate <= tolerableErosionMMPerYear {
		return types.ErosionTolerable
	}
	return types.ErosionHighRisk
}

// projectSoilDepth applies the constant annual decrement 19 times from the
// fixed 1000 mm starting depth, producing one point per year for 20 years.
func projectSoilDepth(rate float64) types.SoilDepthSeries {
	series := make(types.SoilDepthSeries, soilProjectionYears)
	depth := soilStartDepthMM
	for year := 1; year <= soilProjectionYears; year++ {
		series[year-1] = types.SoilDepthPoint{Year: year, DepthMM: depth}
		depth -= rate
	}
	return series
}
