package calculation

import (
	"testing"

	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSubscriberEstimator(t *testing.T) *SubscriberEstimator {
	t.Helper()
	cfg := config.DefaultConfiguration()
	se, err := NewSubscriberEstimator(2023, cfg.Brackets, MustRateCurve("inflation_rate", cfg.Economic.InflationRate))
	require.NoError(t, err)
	return se
}

func TestSubscriberEstimator_Estimate(t *testing.T) {
	se := defaultSubscriberEstimator(t)

	snap := se.Estimate(2023, uniformTable(200, 100))

	require.Len(t, snap.Brackets, 4)
	wantCounts := []float64{1000 * 0.31, 2200 * 0.67, 1000 * 0.75, 500 * 0.14}
	wantIncome := []float64{310 * 250 * 12, 1474 * 350 * 12, 750 * 380 * 12, 70 * 300 * 12}
	var total float64
	for i, b := range snap.Brackets {
		assert.InDelta(t, wantCounts[i], b.Subscribers, 1e-9, "bracket %s", b.Ages)
		assert.InDelta(t, wantIncome[i], b.IncomeReal.InexactFloat64(), 1e-6, "bracket %s", b.Ages)
		total += wantCounts[i]
	}
	assert.InDelta(t, total, snap.TotalSubscribers, 1e-9)
	assert.True(t, snap.TotalIncomeNominal.Equal(snap.TotalIncomeReal), "no inflation in the base year")
}

func TestSubscriberEstimator_NominalIncomeIsInflated(t *testing.T) {
	se := defaultSubscriberEstimator(t)

	snap := se.Estimate(2025, uniformTable(200, 100))

	want := snap.TotalIncomeReal.Mul(decimal.NewFromFloat(1.022 * 1.022))
	assert.InDelta(t, want.InexactFloat64(), snap.TotalIncomeNominal.InexactFloat64(), 1e-3)
}

func TestSubscriberEstimator_EmptyTable(t *testing.T) {
	se := defaultSubscriberEstimator(t)

	snap := se.Estimate(2023, uniformTable(200, 0))

	assert.Zero(t, snap.TotalSubscribers)
	assert.True(t, snap.TotalIncomeReal.IsZero())
}

func TestNewSubscriberEstimator_Errors(t *testing.T) {
	inflation := MustRateCurve("inflation_rate", domain.RateTable{2023: 0.02})
	tests := []struct {
		name     string
		brackets []domain.AgeBracket
	}{
		{"none", nil},
		{"overlap", []domain.AgeBracket{
			{Ages: domain.AgeRange{Min: 18, Max: 30}, ParticipationRate: 0.5, MonthlyIncome: decimal.NewFromInt(100)},
			{Ages: domain.AgeRange{Min: 30, Max: 40}, ParticipationRate: 0.5, MonthlyIncome: decimal.NewFromInt(100)},
		}},
		{"participation", []domain.AgeBracket{
			{Ages: domain.AgeRange{Min: 18, Max: 30}, ParticipationRate: -0.1, MonthlyIncome: decimal.NewFromInt(100)},
		}},
		{"income", []domain.AgeBracket{
			{Ages: domain.AgeRange{Min: 18, Max: 30}, ParticipationRate: 0.5, MonthlyIncome: decimal.NewFromInt(-1)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubscriberEstimator(2023, tt.brackets, inflation)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}
