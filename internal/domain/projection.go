package domain

import (
	"github.com/shopspring/decimal"
)

// Cohort is the population of one integer age, by sex.
type Cohort struct {
	Age    int     `yaml:"age" json:"age"`
	Male   float64 `yaml:"male" json:"male"`
	Female float64 `yaml:"female" json:"female"`
	Total  float64 `yaml:"total" json:"total"`
}

// PopulationTable holds one cohort per age, index == age.
type PopulationTable []Cohort

// SumRange returns the total population inside r.
func (pt PopulationTable) SumRange(r AgeRange) float64 {
	var sum float64
	for _, c := range pt {
		if r.Contains(c.Age) {
			sum += c.Total
		}
	}
	return sum
}

// FemaleRange returns the female population inside r.
func (pt PopulationTable) FemaleRange(r AgeRange) float64 {
	var sum float64
	for _, c := range pt {
		if r.Contains(c.Age) {
			sum += c.Female
		}
	}
	return sum
}

// Total returns the whole population.
func (pt PopulationTable) Total() float64 {
	var sum float64
	for _, c := range pt {
		sum += c.Total
	}
	return sum
}

// PopulationIndicators are the per-year demographic aggregates.
type PopulationIndicators struct {
	TotalPopulation      float64 `json:"total_population"`
	WorkingAgePopulation float64 `json:"working_age_population"`
	ElderlyPopulation    float64 `json:"elderly_population"`
	ElderlyDependency    float64 `json:"elderly_dependency"`
}

// EconomicSnapshot is the macro state of one year. Levels are in 만원.
type EconomicSnapshot struct {
	Year                  int             `json:"year"`
	GDPGrowthRate         float64         `json:"gdp_growth_rate"`
	RealWageGrowthRate    float64         `json:"real_wage_growth_rate"`
	InflationRate         float64         `json:"inflation_rate"`
	NominalWageGrowthRate float64         `json:"nominal_wage_growth_rate"`
	CumulativeInflation   float64         `json:"cumulative_inflation"`
	RealGDP               decimal.Decimal `json:"real_gdp"`
	NominalGDP            decimal.Decimal `json:"nominal_gdp"`
	RealWage              decimal.Decimal `json:"real_wage"`
	NominalWage           decimal.Decimal `json:"nominal_wage"`
}

// BracketSubscribers is one age bracket's contributors and income.
type BracketSubscribers struct {
	Ages        AgeRange        `json:"ages"`
	Subscribers float64         `json:"subscribers"`
	IncomeReal  decimal.Decimal `json:"income_real"`
}

// SubscriberSnapshot aggregates contributors for a year.
type SubscriberSnapshot struct {
	Year               int                  `json:"year"`
	Brackets           []BracketSubscribers `json:"brackets"`
	TotalSubscribers   float64              `json:"total_subscribers"`
	TotalIncomeReal    decimal.Decimal      `json:"total_income_real"`
	TotalIncomeNominal decimal.Decimal      `json:"total_income_nominal"`
}

// BenefitSnapshot aggregates pension expenditure for a year.
type BenefitSnapshot struct {
	Year                 int             `json:"year"`
	Beneficiaries        float64         `json:"beneficiaries"`
	AvgBenefitReal       decimal.Decimal `json:"avg_benefit_real"`
	AvgBenefitNominal    decimal.Decimal `json:"avg_benefit_nominal"`
	TotalBenefitsReal    decimal.Decimal `json:"total_benefits_real"`
	TotalBenefitsNominal decimal.Decimal `json:"total_benefits_nominal"`
}

// FinancialRecord is one year of the reserve fund ledger.
// Simulation is the path index in stochastic runs and zero otherwise.
type FinancialRecord struct {
	Simulation         int             `json:"simulation"`
	Year               int             `json:"year"`
	NominalRevenue     decimal.Decimal `json:"nominal_revenue"`
	RealRevenue        decimal.Decimal `json:"real_revenue"`
	NominalExpenditure decimal.Decimal `json:"nominal_expenditure"`
	RealExpenditure    decimal.Decimal `json:"real_expenditure"`
	NominalBalance     decimal.Decimal `json:"nominal_balance"`
	RealBalance        decimal.Decimal `json:"real_balance"`
	NominalReserveFund decimal.Decimal `json:"nominal_reserve_fund"`
	RealReserveFund    decimal.Decimal `json:"real_reserve_fund"`
	FundRatio          decimal.Decimal `json:"fund_ratio"`
	NominalGDP         decimal.Decimal `json:"nominal_gdp"`
	RealGDP            decimal.Decimal `json:"real_gdp"`
	PortfolioReturn    float64         `json:"portfolio_return"`
}

// IsDepleted reports whether the fund is exhausted at year end.
func (fr FinancialRecord) IsDepleted() bool {
	return fr.NominalReserveFund.LessThanOrEqual(decimal.Zero)
}

// DemographicRecord is one year of population and contributor aggregates.
type DemographicRecord struct {
	Year                 int             `json:"year"`
	TotalPopulation      float64         `json:"total_population"`
	WorkingAgePopulation float64         `json:"working_age_population"`
	ElderlyPopulation    float64         `json:"elderly_population"`
	ElderlyDependency    float64         `json:"elderly_dependency"`
	TotalSubscribers     float64         `json:"total_subscribers"`
	TotalIncomeNominal   decimal.Decimal `json:"total_income_nominal"`
	TotalIncomeReal      decimal.Decimal `json:"total_income_real"`
}

// ProjectionResult is the output of a deterministic run.
type ProjectionResult struct {
	RunID       string              `json:"run_id"`
	Label       string              `json:"label,omitempty"`
	Assumptions []string            `json:"assumptions,omitempty"`
	Financial   []FinancialRecord   `json:"financial"`
	Demographic []DemographicRecord `json:"demographic"`
	Economic    []EconomicSnapshot  `json:"economic,omitempty"`
}

// EnsembleResult is the output of a Monte Carlo run.
type EnsembleResult struct {
	RunID       string              `json:"run_id"`
	Label       string              `json:"label,omitempty"`
	Seed        int64               `json:"seed"`
	Simulations int                 `json:"simulations"`
	Paths       [][]FinancialRecord `json:"paths"`
	Demographic []DemographicRecord `json:"demographic"`
}
