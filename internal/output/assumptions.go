package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultAssumptions lists key modeling assumptions rendered when no
// configuration is attached to a report.
var DefaultAssumptions = []string{
	"Contribution rate: 9.0% of insured income",
	"Income replacement rate: 40.0%",
	"Administrative overhead: 1.0% of benefit expenditure",
	"Initial reserve fund: 915.0조원",
	"Fertility rate: 0.73 (2023) rising to 1.21 (2050+)",
	"Deterministic return: allocation-weighted expected portfolio return",
}

// GenerateAssumptions creates a dynamic assumptions list from actual config values.
func GenerateAssumptions(cfg *domain.Configuration) []string {
	if cfg == nil {
		return DefaultAssumptions
	}
	f := cfg.Finance
	out := []string{
		fmt.Sprintf("Projection horizon: %d-%d", cfg.Horizon.StartYear, cfg.Horizon.EndYear),
		fmt.Sprintf("Contribution rate: %.1f%% of insured income", f.ContributionRate*100),
		fmt.Sprintf("Income replacement rate: %.1f%%", cfg.Benefit.IncomeReplacement*100),
		fmt.Sprintf("Administrative overhead: %.1f%% of benefit expenditure", f.AdminOverhead*100),
		fmt.Sprintf("Initial reserve fund: %s", FormatTrillionWon(f.InitialReserve)),
		fmt.Sprintf("Fertility rate: %s", describeTable(cfg.Demographic.FertilityRate, "%.2f")),
		fmt.Sprintf("Inflation: %s", describeTable(cfg.Economic.InflationRate, "%.1f%%", 100)),
		fmt.Sprintf("Real GDP growth: %s", describeTable(cfg.Economic.GDPGrowthRate, "%.1f%%", 100)),
	}
	switch f.ReturnSource {
	case domain.ReturnSourceCurve:
		out = append(out, fmt.Sprintf("Deterministic return: %s", describeTable(f.NominalInvestmentReturn, "%.1f%%", 100)))
	default:
		out = append(out, fmt.Sprintf("Deterministic return: portfolio of %s", describeAllocation(cfg.Portfolio.Allocation)))
	}
	if cfg.Stochastic.Enabled {
		out = append(out, fmt.Sprintf("Monte Carlo: %d simulations", cfg.Stochastic.Simulations))
	}
	return out
}

// describeTable renders the first and last entries of a rate table, e.g. "0.73 (2023) to 1.21 (2070)".
func describeTable(table domain.RateTable, format string, scale ...float64) string {
	if len(table) == 0 {
		return "n/a"
	}
	factor := 1.0
	if len(scale) > 0 {
		factor = scale[0]
	}
	years := make([]int, 0, len(table))
	for y := range table {
		years = append(years, y)
	}
	sort.Ints(years)
	first, last := years[0], years[len(years)-1]
	if len(years) == 1 {
		return fmt.Sprintf(format+" (flat)", table[first]*factor)
	}
	return fmt.Sprintf(format+" (%d) to "+format+" (%d)", table[first]*factor, first, table[last]*factor, last)
}

func describeAllocation(alloc domain.AssetWeights) string {
	names := make([]string, 0, len(alloc))
	for name := range alloc {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, FormatPercentage(decimal.NewFromFloat(alloc[name]).Mul(decimalHundred))))
	}
	return strings.Join(parts, ", ")
}

var decimalHundred = decimal.NewFromInt(100)
