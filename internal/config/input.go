package config

import (
	"fmt"
	"math"
	"os"

	"github.com/npsmodel/projection/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file. Sections missing
// from the file keep their default values; a table present in the file
// replaces the default table as a whole.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes configuration bytes on top of the defaults and validates the result.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	config := DefaultConfiguration()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// SaveConfiguration writes config as YAML.
func (ip *InputParser) SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config == nil {
		return fmt.Errorf("configuration is required")
	}

	h := config.Horizon
	if h.StartYear <= 0 {
		return fmt.Errorf("horizon start year must be positive")
	}
	if h.EndYear < h.StartYear {
		return fmt.Errorf("horizon end year %d is before start year %d", h.EndYear, h.StartYear)
	}

	if err := ip.validatePopulation(&config.Population); err != nil {
		return fmt.Errorf("population seed validation failed: %w", err)
	}
	if err := ip.validateDemographic(&config.Demographic); err != nil {
		return fmt.Errorf("demographic validation failed: %w", err)
	}
	if err := ip.validateEconomic(&config.Economic); err != nil {
		return fmt.Errorf("economic validation failed: %w", err)
	}
	if err := ip.validateBrackets(config.Brackets); err != nil {
		return fmt.Errorf("subscriber bracket validation failed: %w", err)
	}
	if err := ip.validateBenefit(&config.Benefit); err != nil {
		return fmt.Errorf("benefit validation failed: %w", err)
	}
	if err := ip.validateFinance(&config.Finance); err != nil {
		return fmt.Errorf("finance validation failed: %w", err)
	}
	if err := ip.validatePortfolio(&config.Portfolio, config.Stochastic.Enabled); err != nil {
		return fmt.Errorf("portfolio validation failed: %w", err)
	}
	if err := ip.validateStochastic(&config.Stochastic); err != nil {
		return fmt.Errorf("stochastic validation failed: %w", err)
	}

	return nil
}

func (ip *InputParser) validatePopulation(seed *domain.PopulationSeed) error {
	if len(seed.Cohorts) == 0 && len(seed.Groups) == 0 {
		return fmt.Errorf("cohorts or groups are required")
	}
	if seed.MaleShare < 0 || seed.MaleShare > 1 {
		return fmt.Errorf("male share must be between 0 and 1")
	}
	for _, g := range seed.Groups {
		if g.Total < 0 {
			return fmt.Errorf("group %q total cannot be negative", g.Name)
		}
		if g.Ages.Max < 0 {
			return fmt.Errorf("group %q needs a closed age range", g.Name)
		}
		if g.Ages.Min < 0 || g.Ages.Min > g.Ages.Max {
			return fmt.Errorf("group %q has invalid ages %d-%d", g.Name, g.Ages.Min, g.Ages.Max)
		}
		if g.Divisor < 0 {
			return fmt.Errorf("group %q divisor cannot be negative", g.Name)
		}
	}
	return nil
}

func (ip *InputParser) validateDemographic(d *domain.DemographicParams) error {
	if err := validateRateTable("fertility_rate", d.FertilityRate, 0, 10); err != nil {
		return err
	}
	if err := validateRateTable("net_migration", d.NetMigration, math.Inf(-1), math.Inf(1)); err != nil {
		return err
	}
	if len(d.SurvivalBands) == 0 {
		return fmt.Errorf("survival bands are required")
	}
	for _, b := range d.SurvivalBands {
		if b.Survival < 0 || b.Survival > 1 {
			return fmt.Errorf("survival for ages %s must be between 0 and 1", b.Ages)
		}
	}
	if d.FertileAges.Max < d.FertileAges.Min {
		return fmt.Errorf("fertile ages must be a closed range")
	}
	if d.MaleBirthShare < 0 || d.MaleBirthShare > 1 {
		return fmt.Errorf("male birth share must be between 0 and 1")
	}
	if d.MaxAge <= 0 {
		return fmt.Errorf("max age must be positive")
	}
	if d.ElderlyAge <= 0 || d.ElderlyAge > d.MaxAge {
		return fmt.Errorf("elderly age must be within 1..%d", d.MaxAge)
	}
	return nil
}

func (ip *InputParser) validateEconomic(e *domain.EconomicParams) error {
	tables := []struct {
		name  string
		table domain.RateTable
	}{
		{"gdp_growth_rate", e.GDPGrowthRate},
		{"real_wage_growth_rate", e.RealWageGrowthRate},
		{"nominal_wage_growth_rate", e.NominalWageGrowthRate},
		{"inflation_rate", e.InflationRate},
	}
	for _, t := range tables {
		if err := validateRateTable(t.name, t.table, -1, 1); err != nil {
			return err
		}
	}
	if !e.BaseGDP.IsPositive() {
		return fmt.Errorf("base GDP must be positive")
	}
	if !e.BaseMonthlyWage.IsPositive() {
		return fmt.Errorf("base monthly wage must be positive")
	}
	return nil
}

func (ip *InputParser) validateBrackets(brackets []domain.AgeBracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	for i, b := range brackets {
		if b.ParticipationRate < 0 || b.ParticipationRate > 1 {
			return fmt.Errorf("participation rate for ages %s must be between 0 and 1", b.Ages)
		}
		if b.MonthlyIncome.IsNegative() {
			return fmt.Errorf("monthly income for ages %s cannot be negative", b.Ages)
		}
		for _, o := range brackets[i+1:] {
			if b.Ages.Overlaps(o.Ages) {
				return fmt.Errorf("brackets %s and %s overlap", b.Ages, o.Ages)
			}
		}
	}
	return nil
}

func (ip *InputParser) validateBenefit(b *domain.BenefitParams) error {
	if b.IncomeReplacement < 0 || b.IncomeReplacement > 1 {
		return fmt.Errorf("income replacement must be between 0 and 1")
	}
	if b.FullCareerYears <= 0 {
		return fmt.Errorf("full career years must be positive")
	}
	if err := validateRateTable("avg_insured_period", b.AvgInsuredPeriod, 0, 100); err != nil {
		return err
	}
	return validateRateTable("benefit_rate", b.BenefitRate, 0, 1)
}

func (ip *InputParser) validateFinance(f *domain.FinanceParams) error {
	if f.ContributionRate < 0 || f.ContributionRate > 1 {
		return fmt.Errorf("contribution rate must be between 0 and 1")
	}
	if f.AdminOverhead < 0 {
		return fmt.Errorf("admin overhead cannot be negative")
	}
	if f.InitialReserve.IsNegative() || f.InitialRealReserve.IsNegative() {
		return fmt.Errorf("initial reserve cannot be negative")
	}
	switch f.ReturnSource {
	case "", domain.ReturnSourcePortfolio:
	case domain.ReturnSourceCurve:
		if err := validateRateTable("nominal_investment_return", f.NominalInvestmentReturn, -1, 1); err != nil {
			return err
		}
	default:
		return fmt.Errorf("return source must be %q or %q, got %q", domain.ReturnSourcePortfolio, domain.ReturnSourceCurve, f.ReturnSource)
	}
	return nil
}

func (ip *InputParser) validatePortfolio(p *domain.PortfolioSpec, stochastic bool) error {
	if len(p.Allocation) == 0 {
		return fmt.Errorf("allocation is required")
	}
	for name, w := range p.Allocation {
		if w < 0 {
			return fmt.Errorf("allocation for %s cannot be negative", name)
		}
		if !stochastic {
			continue
		}
		if _, ok := p.ExpectedReturns[name]; !ok {
			continue
		}
		if v, ok := p.Volatilities[name]; !ok || v <= 0 {
			return fmt.Errorf("stochastic runs need a positive volatility for %s", name)
		}
	}
	c := p.Correlation
	if !c.IsZero() && len(c.Matrix) != len(c.Assets) {
		return fmt.Errorf("correlation matrix has %d rows for %d assets", len(c.Matrix), len(c.Assets))
	}
	return nil
}

func (ip *InputParser) validateStochastic(s *domain.StochasticSettings) error {
	if s.Enabled && s.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	return nil
}

func validateRateTable(name string, table domain.RateTable, lo, hi float64) error {
	if len(table) == 0 {
		return fmt.Errorf("%s needs at least one entry", name)
	}
	for year, v := range table {
		if math.IsNaN(v) || v < lo || v > hi {
			return fmt.Errorf("%s for %d is out of range: %v", name, year, v)
		}
	}
	return nil
}
