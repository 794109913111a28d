package output

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/npsmodel/projection/internal/domain"
)

// financialRow is one CSV line of the ledger, amounts in 조원.
type financialRow struct {
	Year               int    `csv:"year"`
	NominalRevenue     string `csv:"nominal_revenue"`
	NominalExpenditure string `csv:"nominal_expenditure"`
	NominalBalance     string `csv:"nominal_balance"`
	NominalReserveFund string `csv:"nominal_reserve_fund"`
	RealRevenue        string `csv:"real_revenue"`
	RealExpenditure    string `csv:"real_expenditure"`
	RealBalance        string `csv:"real_balance"`
	RealReserveFund    string `csv:"real_reserve_fund"`
	FundRatio          string `csv:"fund_ratio"`
	PortfolioReturn    string `csv:"portfolio_return"`
}

func newFinancialRow(r domain.FinancialRecord) financialRow {
	return financialRow{
		Year:               r.Year,
		NominalRevenue:     trillions(r.NominalRevenue),
		NominalExpenditure: trillions(r.NominalExpenditure),
		NominalBalance:     trillions(r.NominalBalance),
		NominalReserveFund: trillions(r.NominalReserveFund),
		RealRevenue:        trillions(r.RealRevenue),
		RealExpenditure:    trillions(r.RealExpenditure),
		RealBalance:        trillions(r.RealBalance),
		RealReserveFund:    trillions(r.RealReserveFund),
		FundRatio:          r.FundRatio.StringFixed(2),
		PortfolioReturn:    fmt.Sprintf("%.4f", r.PortfolioReturn),
	}
}

// CSVSummarizer writes the financial ledger, one row per year.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(result *domain.ProjectionResult) ([]byte, error) {
	if result == nil || len(result.Financial) == 0 {
		return nil, fmt.Errorf("projection has no financial records")
	}
	rows := make([]financialRow, 0, len(result.Financial))
	for _, r := range result.Financial {
		rows = append(rows, newFinancialRow(r))
	}
	return gocsv.MarshalBytes(&rows)
}
