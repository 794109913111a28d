package calculation

import (
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// MacroEconomyProjector compounds growth curves from base-year levels.
type MacroEconomyProjector struct {
	baseYear    int
	gdpGrowth   *RateCurve
	realWage    *RateCurve
	nominalWage *RateCurve
	inflation   *RateCurve
	baseGDP     decimal.Decimal
	baseWage    decimal.Decimal
}

// NewMacroEconomyProjector builds the projector. inflation is shared with the
// other sub-models.
func NewMacroEconomyProjector(baseYear int, params domain.EconomicParams, inflation *RateCurve) (*MacroEconomyProjector, error) {
	if inflation == nil {
		return nil, fmt.Errorf("%w: inflation curve is required", ErrInvalidConfiguration)
	}
	gdp, err := NewRateCurve("gdp_growth_rate", params.GDPGrowthRate)
	if err != nil {
		return nil, err
	}
	realWage, err := NewRateCurve("real_wage_growth_rate", params.RealWageGrowthRate)
	if err != nil {
		return nil, err
	}
	nominalWage, err := NewRateCurve("nominal_wage_growth_rate", params.NominalWageGrowthRate)
	if err != nil {
		return nil, err
	}
	if !params.BaseGDP.IsPositive() || !params.BaseMonthlyWage.IsPositive() {
		return nil, fmt.Errorf("%w: base GDP and base wage must be positive", ErrInvalidConfiguration)
	}
	return &MacroEconomyProjector{
		baseYear:    baseYear,
		gdpGrowth:   gdp,
		realWage:    realWage,
		nominalWage: nominalWage,
		inflation:   inflation,
		baseGDP:     params.BaseGDP,
		baseWage:    params.BaseMonthlyWage,
	}, nil
}

// Snapshot compounds every intervening year from the base. Cost is O(year-base);
// use Trajectory for a whole horizon.
func (mp *MacroEconomyProjector) Snapshot(year int) domain.EconomicSnapshot {
	gdpFactor := mp.gdpGrowth.CumulativeFactor(mp.baseYear, year)
	realWageFactor := mp.realWage.CumulativeFactor(mp.baseYear, year)
	nominalWageFactor := mp.nominalWage.CumulativeFactor(mp.baseYear, year)
	inflationFactor := mp.inflation.CumulativeFactor(mp.baseYear, year)
	return mp.snapshot(year, gdpFactor, realWageFactor, nominalWageFactor, inflationFactor)
}

// Trajectory returns snapshots for start..end, compounding forward once.
func (mp *MacroEconomyProjector) Trajectory(start, end int) []domain.EconomicSnapshot {
	if end < start {
		return nil
	}
	gdp := mp.gdpGrowth.CumulativeFactors(mp.baseYear, start, end)
	realWage := mp.realWage.CumulativeFactors(mp.baseYear, start, end)
	nominalWage := mp.nominalWage.CumulativeFactors(mp.baseYear, start, end)
	inflation := mp.inflation.CumulativeFactors(mp.baseYear, start, end)
	out := make([]domain.EconomicSnapshot, 0, end-start+1)
	for i := range gdp {
		out = append(out, mp.snapshot(start+i, gdp[i], realWage[i], nominalWage[i], inflation[i]))
	}
	return out
}

func (mp *MacroEconomyProjector) snapshot(year int, gdpFactor, realWageFactor, nominalWageFactor, inflationFactor float64) domain.EconomicSnapshot {
	realGDP := mp.baseGDP.Mul(decimal.NewFromFloat(gdpFactor))
	return domain.EconomicSnapshot{
		Year:                  year,
		GDPGrowthRate:         mp.gdpGrowth.ValueAt(year),
		RealWageGrowthRate:    mp.realWage.ValueAt(year),
		InflationRate:         mp.inflation.ValueAt(year),
		NominalWageGrowthRate: mp.nominalWage.ValueAt(year),
		CumulativeInflation:   inflationFactor,
		RealGDP:               realGDP,
		NominalGDP:            realGDP.Mul(decimal.NewFromFloat(inflationFactor)),
		RealWage:              mp.baseWage.Mul(decimal.NewFromFloat(realWageFactor)),
		NominalWage:           mp.baseWage.Mul(decimal.NewFromFloat(nominalWageFactor)),
	}
}
