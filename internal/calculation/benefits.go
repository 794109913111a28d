package calculation

import (
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// BenefitEstimator projects beneficiaries and benefit expenditure.
type BenefitEstimator struct {
	baseYear        int
	elderly         domain.AgeRange
	replacement     decimal.Decimal
	fullCareerYears decimal.Decimal
	insuredPeriod   *RateCurve
	benefitRate     *RateCurve
	inflation       *RateCurve
}

// NewBenefitEstimator validates the benefit parameters.
func NewBenefitEstimator(baseYear, elderlyAge int, params domain.BenefitParams, inflation *RateCurve) (*BenefitEstimator, error) {
	if params.IncomeReplacement < 0 {
		return nil, fmt.Errorf("%w: income replacement cannot be negative", ErrInvalidConfiguration)
	}
	if params.FullCareerYears <= 0 {
		return nil, fmt.Errorf("%w: full career years must be positive", ErrInvalidConfiguration)
	}
	period, err := NewRateCurve("avg_insured_period", params.AvgInsuredPeriod)
	if err != nil {
		return nil, err
	}
	rate, err := NewRateCurve("benefit_rate", params.BenefitRate)
	if err != nil {
		return nil, err
	}
	return &BenefitEstimator{
		baseYear:        baseYear,
		elderly:         domain.AgeRange{Min: elderlyAge, Max: -1},
		replacement:     decimal.NewFromFloat(params.IncomeReplacement),
		fullCareerYears: decimal.NewFromFloat(params.FullCareerYears),
		insuredPeriod:   period,
		benefitRate:     rate,
		inflation:       inflation,
	}, nil
}

// Estimate computes the year's benefit expenditure. Zero subscribers is degenerate.
func (be *BenefitEstimator) Estimate(year int, table domain.PopulationTable, subs domain.SubscriberSnapshot) (domain.BenefitSnapshot, error) {
	return be.estimate(year, table, subs, be.inflation.CumulativeFactor(be.baseYear, year))
}

func (be *BenefitEstimator) estimate(year int, table domain.PopulationTable, subs domain.SubscriberSnapshot, cumulativeInflation float64) (domain.BenefitSnapshot, error) {
	if subs.TotalSubscribers == 0 {
		return domain.BenefitSnapshot{}, fmt.Errorf("year %d: total subscribers is zero: %w", year, ErrDegenerateInput)
	}
	beneficiaries := table.SumRange(be.elderly) * be.benefitRate.ValueAt(year)

	avgIncome := subs.TotalIncomeReal.Div(decimal.NewFromFloat(subs.TotalSubscribers))
	careerShare := decimal.NewFromFloat(be.insuredPeriod.ValueAt(year)).Div(be.fullCareerYears)
	avgBenefit := avgIncome.Mul(be.replacement).Mul(careerShare)
	total := avgBenefit.Mul(decimal.NewFromFloat(beneficiaries))

	inflation := decimal.NewFromFloat(cumulativeInflation)
	return domain.BenefitSnapshot{
		Year:                 year,
		Beneficiaries:        beneficiaries,
		AvgBenefitReal:       avgBenefit,
		AvgBenefitNominal:    avgBenefit.Mul(inflation),
		TotalBenefitsReal:    total,
		TotalBenefitsNominal: total.Mul(inflation),
	}, nil
}
