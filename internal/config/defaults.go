package config

import (
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// Asset class names used by the default portfolio.
const (
	AssetDomesticStock = "domestic_stock"
	AssetForeignStock  = "foreign_stock"
	AssetDomesticBond  = "domestic_bond"
	AssetForeignBond   = "foreign_bond"
	AssetAlternative   = "alternative"
)

// DefaultConfiguration returns the baseline 2023 projection. Money is in 만원,
// population in persons. Every call returns fresh maps and slices.
func DefaultConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Horizon: domain.Horizon{StartYear: 2023, EndYear: 2093},
		Population: domain.PopulationSeed{
			MaleShare: 0.5,
			Groups: []domain.SeedGroup{
				{
					Name:   "under_18",
					Ages:   domain.AgeRange{Min: 0, Max: 17},
					Total:  7_050_000,
					Linear: &domain.LinearWeight{From: 0.8, To: 1.2},
				},
				{
					Name:  "working_age",
					Ages:  domain.AgeRange{Min: 18, Max: 64},
					Total: 35_010_000,
					Bands: []domain.WeightBand{
						{Ages: domain.AgeRange{Min: 18, Max: 39}, Weight: 0.8},
						{Ages: domain.AgeRange{Min: 40, Max: 55}, Weight: 1.3},
						{Ages: domain.AgeRange{Min: 56, Max: 64}, Weight: 0.8},
					},
					Divisor: 45.1,
				},
				{
					Name:  "elderly",
					Ages:  domain.AgeRange{Min: 65, Max: 100},
					Total: 9_500_000,
					Bands: []domain.WeightBand{
						{Ages: domain.AgeRange{Min: 65, Max: 74}, Weight: 2.0},
						{Ages: domain.AgeRange{Min: 75, Max: 84}, Weight: 1.0},
						{Ages: domain.AgeRange{Min: 85, Max: 100}, Weight: 0.5},
					},
					Divisor: 38,
				},
			},
		},
		Demographic: domain.DemographicParams{
			FertilityRate: domain.RateTable{
				2023: 0.73, 2030: 0.96, 2040: 1.19, 2050: 1.21, 2060: 1.21, 2070: 1.21,
			},
			NetMigration: domain.RateTable{
				2023: 43_000, 2030: 46_000, 2040: 46_000, 2050: 43_000, 2060: 43_000, 2070: 40_000,
			},
			SurvivalBands: []domain.SurvivalBand{
				{Ages: domain.AgeRange{Min: 0, Max: 0}, Survival: 0.995},
				{Ages: domain.AgeRange{Min: 1, Max: 39}, Survival: 0.999},
				{Ages: domain.AgeRange{Min: 40, Max: 69}, Survival: 0.995},
				{Ages: domain.AgeRange{Min: 70, Max: 89}, Survival: 0.98},
				{Ages: domain.AgeRange{Min: 90, Max: -1}, Survival: 0.90},
			},
			FertileAges:    domain.AgeRange{Min: 15, Max: 49},
			MaleBirthShare: 0.5,
			WorkingAges:    domain.AgeRange{Min: 18, Max: 64},
			ElderlyAge:     65,
			MaxAge:         200,
		},
		Economic: domain.EconomicParams{
			GDPGrowthRate: domain.RateTable{
				2023: 0.019, 2030: 0.019, 2040: 0.013, 2050: 0.007, 2060: 0.004, 2070: 0.002,
			},
			RealWageGrowthRate: domain.RateTable{
				2023: 0.019, 2030: 0.019, 2040: 0.019, 2050: 0.018, 2060: 0.017, 2070: 0.016,
			},
			NominalWageGrowthRate: domain.RateTable{
				2023: 0.047, 2030: 0.044, 2040: 0.042, 2050: 0.040, 2060: 0.039,
			},
			InflationRate: domain.RateTable{
				2023: 0.022, 2024: 0.022, 2025: 0.022, 2026: 0.022, 2027: 0.022,
				2030: 0.022, 2040: 0.020, 2050: 0.020, 2060: 0.020,
			},
			BaseGDP:         decimal.NewFromInt(210_000_000_000), // 2,100조원
			BaseMonthlyWage: decimal.NewFromInt(385),
		},
		Brackets: []domain.AgeBracket{
			{Ages: domain.AgeRange{Min: 18, Max: 27}, ParticipationRate: 0.31, MonthlyIncome: decimal.NewFromInt(250)},
			{Ages: domain.AgeRange{Min: 28, Max: 49}, ParticipationRate: 0.67, MonthlyIncome: decimal.NewFromInt(350)},
			{Ages: domain.AgeRange{Min: 50, Max: 59}, ParticipationRate: 0.75, MonthlyIncome: decimal.NewFromInt(380)},
			{Ages: domain.AgeRange{Min: 60, Max: 64}, ParticipationRate: 0.14, MonthlyIncome: decimal.NewFromInt(300)},
		},
		Benefit: domain.BenefitParams{
			IncomeReplacement: 0.40,
			AvgInsuredPeriod: domain.RateTable{
				2023: 15, 2030: 18, 2040: 22, 2050: 25, 2060: 28,
			},
			BenefitRate: domain.RateTable{
				2023: 0.44, 2030: 0.55, 2040: 0.65, 2050: 0.75, 2060: 0.80,
			},
			FullCareerYears: 40,
		},
		Finance: domain.FinanceParams{
			ContributionRate:   0.09,
			AdminOverhead:      0.01,
			InitialReserve:     decimal.NewFromInt(91_500_000_000), // 915조원
			InitialRealReserve: decimal.NewFromInt(91_500_000_000),
			NominalInvestmentReturn: domain.RateTable{
				2023: 0.049, 2030: 0.049, 2040: 0.046, 2050: 0.045, 2060: 0.045,
			},
			ReturnSource: domain.ReturnSourcePortfolio,
		},
		Portfolio: DefaultPortfolio(),
		Stochastic: domain.StochasticSettings{
			Enabled:     false,
			Simulations: 1000,
		},
	}
}

// DefaultPortfolio is the fund's strategic allocation with uncorrelated assets.
func DefaultPortfolio() domain.PortfolioSpec {
	return domain.PortfolioSpec{
		Allocation: domain.AssetWeights{
			AssetDomesticStock: 0.140,
			AssetForeignStock:  0.300,
			AssetDomesticBond:  0.319,
			AssetForeignBond:   0.073,
			AssetAlternative:   0.138,
		},
		ExpectedReturns: domain.AssetWeights{
			AssetDomesticStock: 0.06,
			AssetForeignStock:  0.07,
			AssetDomesticBond:  0.03,
			AssetForeignBond:   0.04,
			AssetAlternative:   0.05,
		},
		Volatilities: domain.AssetWeights{
			AssetDomesticStock: 0.18,
			AssetForeignStock:  0.15,
			AssetDomesticBond:  0.05,
			AssetForeignBond:   0.07,
			AssetAlternative:   0.10,
		},
	}
}
