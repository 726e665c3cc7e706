package types

// MowingTiming identifies when the cover crop is mowed during the season.
type MowingTiming string

const (
	// MowingEarly is an early (March) mow.
	MowingEarly MowingTiming = "early"
	// MowingLate is a late (May) mow.
	MowingLate MowingTiming = "late"
	// MowingUnmowed leaves the cover crop standing all season.
	MowingUnmowed MowingTiming = "unmowed"
)

// AllMowingTimings is the closed set of valid timing values.
// Validators MUST check against this set; substring matching on labels is
// not acceptable.
var AllMowingTimings = []MowingTiming{MowingEarly, MowingLate, MowingUnmowed}

// Valid reports whether t is one of the three recognised timings.
func (t MowingTiming) Valid() bool {
	switch t {
	case MowingEarly, MowingLate, MowingUnmowed:
		return true
	}
	return false
}

// Mowed reports whether the crop is cut at some point in the season.
// Only a mowed crop leaves residue on the ground, so only Early and Late
// produce the mulch evaporation savings. Standing residue does not mulch
// the same way in this model.
func (t MowingTiming) Mowed() bool {
	return t == MowingEarly || t == MowingLate
}

// ErosionRisk is the qualitative label derived from the annual erosion rate.
type ErosionRisk string

const (
	ErosionTolerable ErosionRisk = "tolerable"
	ErosionHighRisk  ErosionRisk = "high_risk"
)

// BalanceComponent names one bar of the water-balance breakdown chart.
type BalanceComponent string

const (
	ComponentRainfall      BalanceComponent = "rainfall"
	ComponentRunoff        BalanceComponent = "runoff"
	ComponentEvaporation   BalanceComponent = "evaporation"
	ComponentTranspiration BalanceComponent = "transpiration"
	ComponentNetWater      BalanceComponent = "net_water"
)
