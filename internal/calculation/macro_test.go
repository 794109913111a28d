package calculation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultMacro(t *testing.T) *MacroEconomyProjector {
	t.Helper()
	params := config.DefaultConfiguration().Economic
	mp, err := NewMacroEconomyProjector(2023, params, MustRateCurve("inflation_rate", params.InflationRate))
	require.NoError(t, err)
	return mp
}

func TestMacroEconomyProjector_SnapshotMatchesTrajectory(t *testing.T) {
	mp := defaultMacro(t)

	trajectory := mp.Trajectory(2023, 2093)
	require.Len(t, trajectory, 71)

	for i, snap := range trajectory {
		year := 2023 + i
		if diff := cmp.Diff(mp.Snapshot(year), snap, decimalComparer); diff != "" {
			t.Fatalf("year %d snapshot differs from trajectory (-snapshot +trajectory):\n%s", year, diff)
		}
	}
}

func TestMacroEconomyProjector_TrajectoryWindow(t *testing.T) {
	mp := defaultMacro(t)

	full := mp.Trajectory(2023, 2093)
	window := mp.Trajectory(2030, 2035)
	require.Len(t, window, 6)
	if diff := cmp.Diff(full[7:13], window, decimalComparer); diff != "" {
		t.Fatalf("window differs from the full trajectory (-full +window):\n%s", diff)
	}
	assert.Nil(t, mp.Trajectory(2030, 2029))
}

func TestMacroEconomyProjector_BaseYear(t *testing.T) {
	mp := defaultMacro(t)
	snap := mp.Snapshot(2023)

	assert.Equal(t, 1.0, snap.CumulativeInflation)
	assert.True(t, snap.RealGDP.Equal(decimal.NewFromInt(210_000_000_000)))
	assert.True(t, snap.NominalGDP.Equal(snap.RealGDP))
	assert.True(t, snap.RealWage.Equal(decimal.NewFromInt(385)))
	assert.True(t, snap.NominalWage.Equal(decimal.NewFromInt(385)))
}

func TestMacroEconomyProjector_Compounding(t *testing.T) {
	mp := defaultMacro(t)
	snap := mp.Snapshot(2025)

	assert.InDelta(t, 1.022*1.022, snap.CumulativeInflation, 1e-12)
	assert.InDelta(t, 385*1.019*1.019, snap.RealWage.InexactFloat64(), 1e-9)
	assert.InDelta(t, 0.022, snap.InflationRate, 1e-12)

	nominal := snap.RealGDP.Mul(decimal.NewFromFloat(snap.CumulativeInflation))
	assert.True(t, nominal.Equal(snap.NominalGDP))
	assert.True(t, snap.NominalGDP.GreaterThan(snap.RealGDP))
}

func TestMacroEconomyProjector_Errors(t *testing.T) {
	params := config.DefaultConfiguration().Economic
	inflation := MustRateCurve("inflation_rate", params.InflationRate)

	_, err := NewMacroEconomyProjector(2023, params, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	bad := params
	bad.BaseGDP = decimal.Zero
	_, err = NewMacroEconomyProjector(2023, bad, inflation)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	bad = params
	bad.GDPGrowthRate = domain.RateTable{}
	_, err = NewMacroEconomyProjector(2023, bad, inflation)
	assert.ErrorIs(t, err, ErrInvalidRateTable)

	assert.Nil(t, defaultMacro(t).Trajectory(2030, 2023))
}
