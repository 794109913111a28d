package output

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/npsmodel/projection/internal/domain"
)

// detailedRow joins the ledger, demographic and macro series of one year.
type detailedRow struct {
	Year                 int    `csv:"year"`
	TotalPopulation      string `csv:"total_population"`
	WorkingAgePopulation string `csv:"working_age_population"`
	ElderlyPopulation    string `csv:"elderly_population"`
	ElderlyDependency    string `csv:"elderly_dependency"`
	TotalSubscribers     string `csv:"total_subscribers"`
	TotalIncomeNominal   string `csv:"total_income_nominal"`
	NominalGDP           string `csv:"nominal_gdp"`
	InflationRate        string `csv:"inflation_rate"`
	NominalWage          string `csv:"nominal_wage"`
	NominalRevenue       string `csv:"nominal_revenue"`
	NominalExpenditure   string `csv:"nominal_expenditure"`
	NominalBalance       string `csv:"nominal_balance"`
	NominalReserveFund   string `csv:"nominal_reserve_fund"`
	FundRatio            string `csv:"fund_ratio"`
}

// CSVDetailedExporter writes every per-year series side by side.
// Years missing from a series are left blank.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(result *domain.ProjectionResult) ([]byte, error) {
	if result == nil || len(result.Financial) == 0 {
		return nil, fmt.Errorf("projection has no financial records")
	}
	demo := make(map[int]domain.DemographicRecord, len(result.Demographic))
	for _, d := range result.Demographic {
		demo[d.Year] = d
	}
	econ := make(map[int]domain.EconomicSnapshot, len(result.Economic))
	for _, e := range result.Economic {
		econ[e.Year] = e
	}

	rows := make([]detailedRow, 0, len(result.Financial))
	for _, r := range result.Financial {
		row := detailedRow{
			Year:               r.Year,
			NominalGDP:         trillions(r.NominalGDP),
			NominalRevenue:     trillions(r.NominalRevenue),
			NominalExpenditure: trillions(r.NominalExpenditure),
			NominalBalance:     trillions(r.NominalBalance),
			NominalReserveFund: trillions(r.NominalReserveFund),
			FundRatio:          r.FundRatio.StringFixed(2),
		}
		if d, ok := demo[r.Year]; ok {
			row.TotalPopulation = fmt.Sprintf("%.0f", d.TotalPopulation)
			row.WorkingAgePopulation = fmt.Sprintf("%.0f", d.WorkingAgePopulation)
			row.ElderlyPopulation = fmt.Sprintf("%.0f", d.ElderlyPopulation)
			row.ElderlyDependency = fmt.Sprintf("%.2f", d.ElderlyDependency)
			row.TotalSubscribers = fmt.Sprintf("%.0f", d.TotalSubscribers)
			row.TotalIncomeNominal = trillions(d.TotalIncomeNominal)
		}
		if e, ok := econ[r.Year]; ok {
			row.InflationRate = fmt.Sprintf("%.4f", e.InflationRate)
			row.NominalWage = e.NominalWage.StringFixed(1)
		}
		rows = append(rows, row)
	}
	return gocsv.MarshalBytes(&rows)
}
