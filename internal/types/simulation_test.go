package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoilDepthSeries_ScanValue(t *testing.T) {
	series := SoilDepthSeries{
		{Year: 1, DepthMM: 1000},
		{Year: 2, DepthMM: 998},
	}

	val, err := series.Value()
	require.NoError(t, err)

	var scanned SoilDepthSeries
	require.NoError(t, scanned.Scan(val))
	assert.Equal(t, series, scanned)
}

func TestSoilDepthSeries_ScanString(t *testing.T) {
	var s SoilDepthSeries
	require.NoError(t, s.Scan(`[{"year":1,"depth_mm":1000}]`))
	require.Len(t, s, 1)
	assert.Equal(t, 1000.0, s[0].DepthMM)
}

func TestSoilDepthSeries_ScanNil(t *testing.T) {
	s := SoilDepthSeries{{Year: 1, DepthMM: 1000}}
	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)
}

func TestSoilDepthSeries_ScanUnsupported(t *testing.T) {
	var s SoilDepthSeries
	assert.Error(t, s.Scan(42))
}

func TestSoilDepthSeries_ValueNil(t *testing.T) {
	var s SoilDepthSeries
	val, err := s.Value()
	require.NoError(t, err)
	assert.Nil(t, val)
}

// The breakdown mirrors the dashboard bar chart: rainfall in, the three
// losses negated, net water closing the balance.
func TestSimulationResult_Breakdown(t *testing.T) {
	res := SimulationResult{
		ActualRainfallMM: 400,
		RunoffMM:         68,
		EvaporationMM:    103.5,
		TranspirationMM:  42,
		NetWaterMM:       186.5,
	}

	entries := res.Breakdown()
	require.Len(t, entries, 5)

	assert.Equal(t, BalanceEntry{ComponentRainfall, 400.0}, entries[0])
	assert.Equal(t, BalanceEntry{ComponentRunoff, -68.0}, entries[1])
	assert.Equal(t, BalanceEntry{ComponentEvaporation, -103.5}, entries[2])
	assert.Equal(t, BalanceEntry{ComponentTranspiration, -42.0}, entries[3])
	assert.Equal(t, BalanceEntry{ComponentNetWater, 186.5}, entries[4])

	// The components must sum to the closing net-water figure.
	var sum float64
	for _, e := range entries[:4] {
		sum += e.MM
	}
	assert.InDelta(t, res.NetWaterMM, sum, 1e-9)
}
