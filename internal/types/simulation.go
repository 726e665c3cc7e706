package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SimulationInput holds the management and climate variables for one
// water-balance scenario. Inputs are immutable once constructed; the engine
// derives every output from these four fields alone.
type SimulationInput struct {
	RainfallMM    float64      `json:"rainfall_mm"`
	CoverPct      float64      `json:"cover_pct"`
	Mowing        MowingTiming `json:"mowing"`
	ClimateChange bool         `json:"climate_change"`
}

// SimulationResult is the full output of one engine invocation. All fields
// are closed-form functions of the input; no field may be mutated
// independently.
type SimulationResult struct {
	ActualRainfallMM float64 `json:"actual_rainfall_mm"`
	RunoffMM         float64 `json:"runoff_mm"`
	EvaporationMM    float64 `json:"evaporation_mm"`
	TranspirationMM  float64 `json:"transpiration_mm"`
	NetWaterMM       float64 `json:"net_water_mm"`

	YieldKgPerHa float64 `json:"yield_kg_per_ha"`

	ErosionRateMMPerYear float64         `json:"erosion_rate_mm_per_year"`
	ErosionRisk          ErosionRisk     `json:"erosion_risk"`
	SoilDepth            SoilDepthSeries `json:"soil_depth"`
}

// Breakdown returns the water-balance bar chart data: rainfall as a gain,
// the three losses as negative values, and net water as the closing figure.
func (r *SimulationResult) Breakdown() []BalanceEntry {
	return []BalanceEntry{
		{Component: ComponentRainfall, MM: r.ActualRainfallMM},
		{Component: ComponentRunoff, MM: -r.RunoffMM},
		{Component: ComponentEvaporation, MM: -r.EvaporationMM},
		{Component: ComponentTranspiration, MM: -r.TranspirationMM},
		{Component: ComponentNetWater, MM: r.NetWaterMM},
	}
}

// BalanceEntry is one bar of the water-balance breakdown.
type BalanceEntry struct {
	Component BalanceComponent `json:"component"`
	MM        float64          `json:"mm"`
}

// SoilDepthPoint is a single year of the erosion projection.
type SoilDepthPoint struct {
	Year    int     `json:"year"`
	DepthMM float64 `json:"depth_mm"`
}

// SoilDepthSeries is the ordered 20-year soil-depth projection. It
// implements sql.Scanner and driver.Valuer for JSONB column storage.
type SoilDepthSeries []SoilDepthPoint

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (s *SoilDepthSeries) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("soil depth series: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, s)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (s SoilDepthSeries) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// SimulationRun is a persisted record of one engine invocation: the input
// that was supplied, the result it produced, and when it ran. The engine
// itself is stateless; runs are recorded purely as service history.
type SimulationRun struct {
	ID        string           `json:"id"`
	Input     SimulationInput  `json:"input"`
	Result    SimulationResult `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}
