package output

import (
	"fmt"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// Highlights condenses a projection into the figures every report leads with.
type Highlights struct {
	Summary            calculation.RunSummary
	StartYear          int
	EndYear            int
	InitialReserve     decimal.Decimal
	FinalReserve       decimal.Decimal
	PeakDependency     float64
	PeakDependencyYear int
	StartPopulation    float64
	EndPopulation      float64
}

// AnalyzeProjection extracts the solvency milestones and demographic extremes.
// Extracted from the console formatters for testability.
func AnalyzeProjection(result *domain.ProjectionResult) (Highlights, error) {
	if result == nil || len(result.Financial) == 0 {
		return Highlights{}, fmt.Errorf("projection has no financial records")
	}
	summary, err := calculation.SummarizeRun(result.Financial)
	if err != nil {
		return Highlights{}, err
	}
	first, last := result.Financial[0], result.Financial[len(result.Financial)-1]
	h := Highlights{
		Summary:        summary,
		StartYear:      first.Year,
		EndYear:        last.Year,
		InitialReserve: first.NominalReserveFund,
		FinalReserve:   last.NominalReserveFund,
	}
	for i, d := range result.Demographic {
		if i == 0 {
			h.StartPopulation = d.TotalPopulation
		}
		h.EndPopulation = d.TotalPopulation
		if d.ElderlyDependency > h.PeakDependency {
			h.PeakDependency = d.ElderlyDependency
			h.PeakDependencyYear = d.Year
		}
	}
	return h, nil
}
