package calculation

import (
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerInput carries one year's inputs to the reserve fund recursion.
type LedgerInput struct {
	Year                int
	IncomeReal          decimal.Decimal
	BenefitsReal        decimal.Decimal
	NominalReturn       float64
	RealReturn          float64
	CumulativeInflation float64
	NominalGDP          decimal.Decimal
	RealGDP             decimal.Decimal
}

// ReserveFundLedger owns one path's reserve fund. It is not safe for
// concurrent use; each Monte Carlo path gets its own instance.
type ReserveFundLedger struct {
	reserve          decimal.Decimal
	realReserve      decimal.Decimal
	contributionRate decimal.Decimal
	adminFactor      decimal.Decimal
}

// NewReserveFundLedger opens a ledger at the given nominal and real reserve.
func NewReserveFundLedger(initialNominal, initialReal decimal.Decimal, params domain.FinanceParams) *ReserveFundLedger {
	return &ReserveFundLedger{
		reserve:          decimal.Max(initialNominal, decimal.Zero),
		realReserve:      decimal.Max(initialReal, decimal.Zero),
		contributionRate: decimal.NewFromFloat(params.ContributionRate),
		adminFactor:      decimal.NewFromInt(1).Add(decimal.NewFromFloat(params.AdminOverhead)),
	}
}

// Reserve returns the current nominal reserve.
func (l *ReserveFundLedger) Reserve() decimal.Decimal { return l.reserve }

// RealReserve returns the current reserve in base-year prices.
func (l *ReserveFundLedger) RealReserve() decimal.Decimal { return l.realReserve }

// ApplyBalance posts a nominal balance and floors the reserve at zero.
// Zero is not absorbing: a later surplus rebuilds the fund.
func (l *ReserveFundLedger) ApplyBalance(nominalBalance decimal.Decimal) decimal.Decimal {
	l.reserve = decimal.Max(decimal.Zero, l.reserve.Add(nominalBalance))
	return l.reserve
}

// Apply runs one year. Revenue and expenditure are computed in real terms and
// converted to nominal with the year's cumulative inflation.
func (l *ReserveFundLedger) Apply(in LedgerInput) (domain.FinancialRecord, error) {
	if in.CumulativeInflation <= 0 {
		return domain.FinancialRecord{}, fmt.Errorf("year %d: cumulative inflation must be positive: %w", in.Year, ErrDegenerateInput)
	}
	contribution := in.IncomeReal.Mul(l.contributionRate)
	investment := l.realReserve.Mul(decimal.NewFromFloat(in.RealReturn))
	realRevenue := contribution.Add(investment)
	realExpenditure := in.BenefitsReal.Mul(l.adminFactor)
	realBalance := realRevenue.Sub(realExpenditure)

	inflation := decimal.NewFromFloat(in.CumulativeInflation)
	nominalRevenue := realRevenue.Mul(inflation)
	nominalExpenditure := realExpenditure.Mul(inflation)
	nominalBalance := realBalance.Mul(inflation)

	if nominalExpenditure.IsZero() {
		return domain.FinancialRecord{}, fmt.Errorf("year %d: expenditure is zero: %w", in.Year, ErrDegenerateInput)
	}

	reserve := l.ApplyBalance(nominalBalance)
	l.realReserve = reserve.Div(inflation)

	return domain.FinancialRecord{
		Year:               in.Year,
		NominalRevenue:     nominalRevenue,
		RealRevenue:        realRevenue,
		NominalExpenditure: nominalExpenditure,
		RealExpenditure:    realExpenditure,
		NominalBalance:     nominalBalance,
		RealBalance:        realBalance,
		NominalReserveFund: reserve,
		RealReserveFund:    l.realReserve,
		FundRatio:          reserve.Div(nominalExpenditure),
		NominalGDP:         in.NominalGDP,
		RealGDP:            in.RealGDP,
		PortfolioReturn:    in.NominalReturn,
	}, nil
}
