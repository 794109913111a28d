package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// RunRow is one projection_runs row.
type RunRow struct {
	RunID       string        `db:"run_id"`
	Mode        string        `db:"mode"`
	Label       string        `db:"label"`
	Seed        sql.NullInt64 `db:"seed"`
	Simulations int           `db:"simulations"`
	StartYear   int           `db:"start_year"`
	EndYear     int           `db:"end_year"`
	CreatedAt   time.Time     `db:"created_at"`
}

// FinancialRow is one financial_records row. Money columns travel as
// NUMERIC text so no precision is lost.
type FinancialRow struct {
	RunID              string  `db:"run_id"`
	Simulation         int     `db:"simulation"`
	Year               int     `db:"year"`
	NominalRevenue     string  `db:"nominal_revenue"`
	RealRevenue        string  `db:"real_revenue"`
	NominalExpenditure string  `db:"nominal_expenditure"`
	RealExpenditure    string  `db:"real_expenditure"`
	NominalBalance     string  `db:"nominal_balance"`
	RealBalance        string  `db:"real_balance"`
	NominalReserveFund string  `db:"nominal_reserve_fund"`
	RealReserveFund    string  `db:"real_reserve_fund"`
	FundRatio          string  `db:"fund_ratio"`
	NominalGDP         string  `db:"nominal_gdp"`
	RealGDP            string  `db:"real_gdp"`
	PortfolioReturn    float64 `db:"portfolio_return"`
}

// NewFinancialRow converts a ledger record for runID.
func NewFinancialRow(runID string, r domain.FinancialRecord) FinancialRow {
	return FinancialRow{
		RunID:              runID,
		Simulation:         r.Simulation,
		Year:               r.Year,
		NominalRevenue:     r.NominalRevenue.String(),
		RealRevenue:        r.RealRevenue.String(),
		NominalExpenditure: r.NominalExpenditure.String(),
		RealExpenditure:    r.RealExpenditure.String(),
		NominalBalance:     r.NominalBalance.String(),
		RealBalance:        r.RealBalance.String(),
		NominalReserveFund: r.NominalReserveFund.String(),
		RealReserveFund:    r.RealReserveFund.String(),
		FundRatio:          r.FundRatio.String(),
		NominalGDP:         r.NominalGDP.String(),
		RealGDP:            r.RealGDP.String(),
		PortfolioReturn:    r.PortfolioReturn,
	}
}

// Record converts the row back into a ledger record.
func (fr FinancialRow) Record() (domain.FinancialRecord, error) {
	rec := domain.FinancialRecord{
		Simulation:      fr.Simulation,
		Year:            fr.Year,
		PortfolioReturn: fr.PortfolioReturn,
	}
	fields := []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"nominal_revenue", fr.NominalRevenue, &rec.NominalRevenue},
		{"real_revenue", fr.RealRevenue, &rec.RealRevenue},
		{"nominal_expenditure", fr.NominalExpenditure, &rec.NominalExpenditure},
		{"real_expenditure", fr.RealExpenditure, &rec.RealExpenditure},
		{"nominal_balance", fr.NominalBalance, &rec.NominalBalance},
		{"real_balance", fr.RealBalance, &rec.RealBalance},
		{"nominal_reserve_fund", fr.NominalReserveFund, &rec.NominalReserveFund},
		{"real_reserve_fund", fr.RealReserveFund, &rec.RealReserveFund},
		{"fund_ratio", fr.FundRatio, &rec.FundRatio},
		{"nominal_gdp", fr.NominalGDP, &rec.NominalGDP},
		{"real_gdp", fr.RealGDP, &rec.RealGDP},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return domain.FinancialRecord{}, fmt.Errorf("invalid %s %q: %w", f.name, f.src, err)
		}
		*f.dst = d
	}
	return rec, nil
}

// DemographicRow is one demographic_records row.
type DemographicRow struct {
	RunID                string  `db:"run_id"`
	Year                 int     `db:"year"`
	TotalPopulation      float64 `db:"total_population"`
	WorkingAgePopulation float64 `db:"working_age_population"`
	ElderlyPopulation    float64 `db:"elderly_population"`
	ElderlyDependency    float64 `db:"elderly_dependency"`
	TotalSubscribers     float64 `db:"total_subscribers"`
	TotalIncomeNominal   string  `db:"total_income_nominal"`
	TotalIncomeReal      string  `db:"total_income_real"`
}

// NewDemographicRow converts a demographic record for runID.
func NewDemographicRow(runID string, d domain.DemographicRecord) DemographicRow {
	return DemographicRow{
		RunID:                runID,
		Year:                 d.Year,
		TotalPopulation:      d.TotalPopulation,
		WorkingAgePopulation: d.WorkingAgePopulation,
		ElderlyPopulation:    d.ElderlyPopulation,
		ElderlyDependency:    d.ElderlyDependency,
		TotalSubscribers:     d.TotalSubscribers,
		TotalIncomeNominal:   d.TotalIncomeNominal.String(),
		TotalIncomeReal:      d.TotalIncomeReal.String(),
	}
}
