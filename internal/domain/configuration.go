package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RateTable is a sparse year -> rate table. Keys need not be contiguous.
type RateTable map[int]float64

// UnmarshalYAML replaces the table instead of merging into a default one.
func (rt *RateTable) UnmarshalYAML(value *yaml.Node) error {
	var m map[int]float64
	if err := value.Decode(&m); err != nil {
		return err
	}
	*rt = RateTable(m)
	return nil
}

// AssetWeights maps an asset class to a weight, return or volatility.
type AssetWeights map[string]float64

// UnmarshalYAML replaces the map instead of merging into a default one.
func (aw *AssetWeights) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]float64
	if err := value.Decode(&m); err != nil {
		return err
	}
	*aw = AssetWeights(m)
	return nil
}

// AgeRange is an inclusive age interval. A negative Max means open-ended ("90+").
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether age falls inside the range.
func (r AgeRange) Contains(age int) bool {
	if age < r.Min {
		return false
	}
	return r.Max < 0 || age <= r.Max
}

// Overlaps reports whether two ranges share at least one age.
func (r AgeRange) Overlaps(o AgeRange) bool {
	lo := max(r.Min, o.Min)
	switch {
	case r.Max < 0 && o.Max < 0:
		return true
	case r.Max < 0:
		return o.Max >= lo
	case o.Max < 0:
		return r.Max >= lo
	}
	return lo <= min(r.Max, o.Max)
}

func (r AgeRange) String() string {
	if r.Max < 0 {
		return fmt.Sprintf("%d+", r.Min)
	}
	if r.Min == r.Max {
		return strconv.Itoa(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// ParseAgeRange accepts "18-27", "65+" or a single age "0".
func ParseAgeRange(s string) (AgeRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AgeRange{}, fmt.Errorf("empty age range")
	}
	if strings.HasSuffix(s, "+") {
		lo, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil {
			return AgeRange{}, fmt.Errorf("invalid age range %q: %w", s, err)
		}
		return AgeRange{Min: lo, Max: -1}, nil
	}
	parts := strings.SplitN(s, "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return AgeRange{}, fmt.Errorf("invalid age range %q: %w", s, err)
	}
	hi := lo
	if len(parts) == 2 {
		hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return AgeRange{}, fmt.Errorf("invalid age range %q: %w", s, err)
		}
	}
	if lo < 0 || hi < lo {
		return AgeRange{}, fmt.Errorf("invalid age range %q", s)
	}
	return AgeRange{Min: lo, Max: hi}, nil
}

// UnmarshalYAML reads the compact "18-27" / "90+" form.
func (r *AgeRange) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseAgeRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML writes the compact form so saved configurations round-trip.
func (r AgeRange) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// SurvivalBand is one step of the age-banded survival function.
type SurvivalBand struct {
	Ages     AgeRange `yaml:"ages" json:"ages"`
	Survival float64  `yaml:"survival" json:"survival"`
}

// WeightBand assigns a relative weight to an age interval of a seed group.
type WeightBand struct {
	Ages   AgeRange `yaml:"ages" json:"ages"`
	Weight float64  `yaml:"weight" json:"weight"`
}

// LinearWeight ramps the per-age weight from From (at the group's first age) to To (at its last age).
type LinearWeight struct {
	From float64 `yaml:"from" json:"from"`
	To   float64 `yaml:"to" json:"to"`
}

// SeedGroup distributes a group total over single ages.
// When Divisor is zero the weights are normalised by their sum.
type SeedGroup struct {
	Name    string        `yaml:"name" json:"name"`
	Ages    AgeRange      `yaml:"ages" json:"ages"`
	Total   float64       `yaml:"total" json:"total"`
	Linear  *LinearWeight `yaml:"linear,omitempty" json:"linear,omitempty"`
	Bands   []WeightBand  `yaml:"bands,omitempty" json:"bands,omitempty"`
	Divisor float64       `yaml:"divisor,omitempty" json:"divisor,omitempty"`
}

// PopulationSeed is the base-year population. Explicit cohorts win over groups.
type PopulationSeed struct {
	MaleShare float64     `yaml:"male_share" json:"male_share"`
	Groups    []SeedGroup `yaml:"groups,omitempty" json:"groups,omitempty"`
	Cohorts   []Cohort    `yaml:"cohorts,omitempty" json:"cohorts,omitempty"`
}

// Horizon is the inclusive projection year range.
type Horizon struct {
	StartYear int `yaml:"start_year" json:"start_year"`
	EndYear   int `yaml:"end_year" json:"end_year"`
}

// Years returns the number of projected years.
func (h Horizon) Years() int { return h.EndYear - h.StartYear + 1 }

// DemographicParams drives the cohort-component projection.
type DemographicParams struct {
	FertilityRate  RateTable      `yaml:"fertility_rate" json:"fertility_rate"`
	NetMigration   RateTable      `yaml:"net_migration" json:"net_migration"` // persons per year
	SurvivalBands  []SurvivalBand `yaml:"survival_bands" json:"survival_bands"`
	FertileAges    AgeRange       `yaml:"fertile_ages" json:"fertile_ages"`
	MaleBirthShare float64        `yaml:"male_birth_share" json:"male_birth_share"`
	WorkingAges    AgeRange       `yaml:"working_ages" json:"working_ages"`
	ElderlyAge     int            `yaml:"elderly_age" json:"elderly_age"`
	MaxAge         int            `yaml:"max_age" json:"max_age"`
}

// EconomicParams holds growth curves and base-year levels (만원).
type EconomicParams struct {
	GDPGrowthRate         RateTable       `yaml:"gdp_growth_rate" json:"gdp_growth_rate"`
	RealWageGrowthRate    RateTable       `yaml:"real_wage_growth_rate" json:"real_wage_growth_rate"`
	NominalWageGrowthRate RateTable       `yaml:"nominal_wage_growth_rate" json:"nominal_wage_growth_rate"`
	InflationRate         RateTable       `yaml:"inflation_rate" json:"inflation_rate"`
	BaseGDP               decimal.Decimal `yaml:"base_gdp" json:"base_gdp"`
	BaseMonthlyWage       decimal.Decimal `yaml:"base_monthly_wage" json:"base_monthly_wage"`
}

// AgeBracket is one contributor group.
type AgeBracket struct {
	Ages              AgeRange        `yaml:"ages" json:"ages"`
	ParticipationRate float64         `yaml:"participation_rate" json:"participation_rate"`
	MonthlyIncome     decimal.Decimal `yaml:"monthly_income" json:"monthly_income"` // 만원 per month
}

// BenefitParams drives the benefit expenditure estimate.
type BenefitParams struct {
	IncomeReplacement float64   `yaml:"income_replacement" json:"income_replacement"`
	AvgInsuredPeriod  RateTable `yaml:"avg_insured_period" json:"avg_insured_period"`
	BenefitRate       RateTable `yaml:"benefit_rate" json:"benefit_rate"`
	FullCareerYears   float64   `yaml:"full_career_years" json:"full_career_years"`
}

// Return sources for the deterministic run.
const (
	ReturnSourcePortfolio = "portfolio"
	ReturnSourceCurve     = "curve"
)

// FinanceParams drives the reserve fund ledger.
type FinanceParams struct {
	ContributionRate        float64         `yaml:"contribution_rate" json:"contribution_rate"`
	AdminOverhead           float64         `yaml:"admin_overhead" json:"admin_overhead"`
	InitialReserve          decimal.Decimal `yaml:"initial_reserve" json:"initial_reserve"`
	InitialRealReserve      decimal.Decimal `yaml:"initial_real_reserve" json:"initial_real_reserve"`
	NominalInvestmentReturn RateTable       `yaml:"nominal_investment_return" json:"nominal_investment_return"`
	ReturnSource            string          `yaml:"return_source" json:"return_source"`
}

// CorrelationMatrix is an asset x asset correlation matrix. Empty means identity.
type CorrelationMatrix struct {
	Assets []string    `yaml:"assets,omitempty" json:"assets,omitempty"`
	Matrix [][]float64 `yaml:"matrix,omitempty" json:"matrix,omitempty"`
}

// IsZero reports whether no correlation was supplied.
func (c CorrelationMatrix) IsZero() bool { return len(c.Assets) == 0 && len(c.Matrix) == 0 }

// PortfolioSpec describes the fund's asset allocation and return assumptions.
type PortfolioSpec struct {
	Allocation      AssetWeights      `yaml:"allocation" json:"allocation"`
	ExpectedReturns AssetWeights      `yaml:"expected_returns" json:"expected_returns"`
	Volatilities    AssetWeights      `yaml:"volatilities" json:"volatilities"`
	Correlation     CorrelationMatrix `yaml:"correlation,omitempty" json:"correlation,omitempty"`
}

// StochasticSettings configures the Monte Carlo ensemble.
// A zero Seed draws a fresh seed per run.
type StochasticSettings struct {
	Enabled     bool  `yaml:"enabled" json:"enabled"`
	Simulations int   `yaml:"simulations" json:"simulations"`
	Seed        int64 `yaml:"seed" json:"seed"`
	Workers     int   `yaml:"workers" json:"workers"`
}

// Configuration is the complete projection input.
type Configuration struct {
	Horizon     Horizon            `yaml:"horizon" json:"horizon"`
	Population  PopulationSeed     `yaml:"population" json:"population"`
	Demographic DemographicParams  `yaml:"demographic" json:"demographic"`
	Economic    EconomicParams     `yaml:"economic" json:"economic"`
	Brackets    []AgeBracket       `yaml:"subscriber_brackets" json:"subscriber_brackets"`
	Benefit     BenefitParams      `yaml:"benefit" json:"benefit"`
	Finance     FinanceParams      `yaml:"finance" json:"finance"`
	Portfolio   PortfolioSpec      `yaml:"portfolio" json:"portfolio"`
	Stochastic  StochasticSettings `yaml:"stochastic" json:"stochastic"`
}
