package calculation

import (
	"math"
	"testing"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCurve_ValueAt(t *testing.T) {
	curve, err := NewRateCurve("test", domain.RateTable{2030: 0.03, 2023: 0.02, 2040: 0.01})
	require.NoError(t, err)

	tests := []struct {
		name string
		year int
		want float64
	}{
		{"before first key", 2000, 0.02},
		{"first key", 2023, 0.02},
		{"interpolated", 2026, 0.02 + 0.01*3.0/7.0},
		{"middle key", 2030, 0.03},
		{"falling segment", 2035, 0.02},
		{"last key", 2040, 0.01},
		{"after last key", 2100, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, curve.ValueAt(tt.year), 1e-12)
		})
	}
}

func TestRateCurve_SingleEntryIsFlat(t *testing.T) {
	curve := MustRateCurve("flat", domain.RateTable{2050: 0.7})
	for _, year := range []int{1900, 2050, 2200} {
		assert.Equal(t, 0.7, curve.ValueAt(year))
	}
	assert.Equal(t, "flat", curve.Name())
}

func TestRateCurve_RepeatedLookupsAgree(t *testing.T) {
	curve := MustRateCurve("fertility", domain.RateTable{2023: 0.73, 2030: 0.96, 2040: 1.19})
	for year := 2020; year <= 2045; year++ {
		first := curve.ValueAt(year)
		assert.Equal(t, first, curve.ValueAt(year), "year %d", year)
	}
}

func TestRateCurve_InvalidTables(t *testing.T) {
	tests := []struct {
		name  string
		table domain.RateTable
	}{
		{"empty", domain.RateTable{}},
		{"nil", nil},
		{"nan", domain.RateTable{2023: math.NaN()}},
		{"inf", domain.RateTable{2023: 0.1, 2030: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRateCurve(tt.name, tt.table)
			assert.ErrorIs(t, err, ErrInvalidRateTable)
		})
	}
	assert.Panics(t, func() { MustRateCurve("empty", nil) })
}

func TestRateCurve_CumulativeFactor(t *testing.T) {
	curve := MustRateCurve("inflation", domain.RateTable{2023: 0.02, 2025: 0.04})

	assert.Equal(t, 1.0, curve.CumulativeFactor(2023, 2023))
	assert.Equal(t, 1.0, curve.CumulativeFactor(2023, 2020))
	assert.InDelta(t, 1.03*1.04, curve.CumulativeFactor(2023, 2025), 1e-12)

	factors := curve.CumulativeFactors(2023, 2023, 2030)
	require.Len(t, factors, 8)
	for i, f := range factors {
		assert.Equal(t, curve.CumulativeFactor(2023, 2023+i), f, "year %d", 2023+i)
	}
	assert.Nil(t, curve.CumulativeFactors(2023, 2030, 2023))
}
