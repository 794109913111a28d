package calculation

import (
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
	money "github.com/npsmodel/projection/pkg/decimal"
	"github.com/shopspring/decimal"
)

// SubscriberEstimator applies bracket participation and income to a population table.
type SubscriberEstimator struct {
	baseYear  int
	brackets  []domain.AgeBracket
	inflation *RateCurve
}

// NewSubscriberEstimator rejects empty or overlapping brackets.
func NewSubscriberEstimator(baseYear int, brackets []domain.AgeBracket, inflation *RateCurve) (*SubscriberEstimator, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("%w: at least one subscriber bracket is required", ErrInvalidConfiguration)
	}
	for i, b := range brackets {
		if b.ParticipationRate < 0 || b.ParticipationRate > 1 {
			return nil, fmt.Errorf("%w: participation rate for ages %s must be between 0 and 1", ErrInvalidConfiguration, b.Ages)
		}
		if b.MonthlyIncome.IsNegative() {
			return nil, fmt.Errorf("%w: monthly income for ages %s cannot be negative", ErrInvalidConfiguration, b.Ages)
		}
		for _, o := range brackets[i+1:] {
			if b.Ages.Overlaps(o.Ages) {
				return nil, fmt.Errorf("%w: subscriber brackets %s and %s overlap", ErrInvalidConfiguration, b.Ages, o.Ages)
			}
		}
	}
	return &SubscriberEstimator{
		baseYear:  baseYear,
		brackets:  append([]domain.AgeBracket(nil), brackets...),
		inflation: inflation,
	}, nil
}

// Estimate computes contributors and income for year.
func (se *SubscriberEstimator) Estimate(year int, table domain.PopulationTable) domain.SubscriberSnapshot {
	return se.estimate(year, table, se.inflation.CumulativeFactor(se.baseYear, year))
}

func (se *SubscriberEstimator) estimate(year int, table domain.PopulationTable, cumulativeInflation float64) domain.SubscriberSnapshot {
	snap := domain.SubscriberSnapshot{
		Year:     year,
		Brackets: make([]domain.BracketSubscribers, 0, len(se.brackets)),
	}
	incomeReal := decimal.Zero
	for _, b := range se.brackets {
		count := table.SumRange(b.Ages) * b.ParticipationRate
		income := money.NewMoneyFromDecimal(b.MonthlyIncome).Annual().Mul(decimal.NewFromFloat(count)).Decimal
		snap.Brackets = append(snap.Brackets, domain.BracketSubscribers{
			Ages:        b.Ages,
			Subscribers: count,
			IncomeReal:  income,
		})
		snap.TotalSubscribers += count
		incomeReal = incomeReal.Add(income)
	}
	snap.TotalIncomeReal = incomeReal
	snap.TotalIncomeNominal = incomeReal.Mul(decimal.NewFromFloat(cumulativeInflation))
	return snap
}
