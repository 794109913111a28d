package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleVerboseFormatter renders the full year-by-year console report.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	h, err := AnalyzeProjection(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "=================================================================================")
	fmt.Fprintln(&buf, "NATIONAL PENSION FUND PROJECTION")
	fmt.Fprintln(&buf, "=================================================================================")
	if result.Label != "" {
		fmt.Fprintf(&buf, "Scenario: %s\n", result.Label)
	}
	if result.RunID != "" {
		fmt.Fprintf(&buf, "Run: %s\n", result.RunID)
	}
	fmt.Fprintln(&buf)

	assumptions := result.Assumptions
	if len(assumptions) == 0 {
		assumptions = DefaultAssumptions
	}
	fmt.Fprintln(&buf, "ASSUMPTIONS:")
	for _, a := range assumptions {
		fmt.Fprintf(&buf, "  • %s\n", a)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "SOLVENCY MILESTONES:")
	fmt.Fprintln(&buf, "--------------------")
	fmt.Fprintf(&buf, "  Initial Reserve:        %s\n", FormatTrillionWon(h.InitialReserve))
	fmt.Fprintf(&buf, "  Peak Reserve:           %s조원 (%d)\n", h.Summary.MaxReserve.StringFixed(1), h.Summary.MaxReserveYear)
	fmt.Fprintf(&buf, "  First Deficit Year:     %s\n", optionalYear(h.Summary.FirstDeficitYear))
	fmt.Fprintf(&buf, "  Depletion Year:         %s\n", optionalYear(h.Summary.DepletionYear))
	fmt.Fprintf(&buf, "  Final Reserve (%d):   %s\n", h.EndYear, FormatTrillionWon(h.FinalReserve))
	fmt.Fprintln(&buf)

	if len(result.Demographic) > 0 {
		fmt.Fprintln(&buf, "DEMOGRAPHICS:")
		fmt.Fprintln(&buf, "-------------")
		fmt.Fprintf(&buf, "  Population %d:        %s\n", h.StartYear, FormatPersons(h.StartPopulation))
		fmt.Fprintf(&buf, "  Population %d:        %s\n", h.EndYear, FormatPersons(h.EndPopulation))
		fmt.Fprintf(&buf, "  Peak Elderly Dependency: %.1f (%d)\n", h.PeakDependency, h.PeakDependencyYear)
		fmt.Fprintln(&buf)
	}

	writeYearTable(&buf, result)
	return buf.Bytes(), nil
}

// writeYearTable prints one row per projected year, joining the financial
// and demographic series by year.
func writeYearTable(buf *bytes.Buffer, result *domain.ProjectionResult) {
	demo := make(map[int]domain.DemographicRecord, len(result.Demographic))
	for _, d := range result.Demographic {
		demo[d.Year] = d
	}
	fmt.Fprintf(buf, "%-6s %14s %14s %14s %16s %8s %10s %8s\n",
		"YEAR", "REVENUE", "EXPENDITURE", "BALANCE", "RESERVE", "RETURN", "POP", "DEP")
	fmt.Fprintln(buf, strings.Repeat("-", 98))
	for _, r := range result.Financial {
		d, ok := demo[r.Year]
		pop, dep := "-", "-"
		if ok {
			pop = FormatPersons(d.TotalPopulation)
			dep = fmt.Sprintf("%.1f", d.ElderlyDependency)
		}
		fmt.Fprintf(buf, "%-6d %14s %14s %14s %16s %8s %10s %8s\n",
			r.Year,
			trillionCell(r.NominalRevenue),
			trillionCell(r.NominalExpenditure),
			trillionCell(r.NominalBalance),
			trillionCell(r.NominalReserveFund),
			FormatRate(r.PortfolioReturn),
			pop, dep)
	}
}

func trillionCell(amount decimal.Decimal) string {
	return strings.TrimSuffix(FormatTrillionWon(amount), "조원")
}
