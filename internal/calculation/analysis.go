package calculation

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/npsmodel/projection/internal/domain"
	money "github.com/npsmodel/projection/pkg/decimal"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RunSummary condenses one deterministic run into its solvency milestones.
type RunSummary struct {
	MaxReserve       decimal.Decimal `json:"max_reserve_trillion"` // 조원, one decimal
	MaxReserveYear   int             `json:"max_reserve_year"`
	FirstDeficitYear *int            `json:"first_deficit_year"`
	DepletionYear    *int            `json:"depletion_year"`
}

// SummarizeRun finds the peak reserve, the first year with a non-positive
// balance and the first year with an exhausted reserve.
func SummarizeRun(records []domain.FinancialRecord) (RunSummary, error) {
	if len(records) == 0 {
		return RunSummary{}, fmt.Errorf("no financial records to summarize")
	}
	var s RunSummary
	peak := records[0]
	for _, r := range records[1:] {
		if r.NominalReserveFund.GreaterThan(peak.NominalReserveFund) {
			peak = r
		}
	}
	s.MaxReserve = money.NewMoneyFromDecimal(peak.NominalReserveFund).Trillions().Round(1)
	s.MaxReserveYear = peak.Year
	for _, r := range records {
		if s.FirstDeficitYear == nil && r.NominalBalance.LessThanOrEqual(decimal.Zero) {
			y := r.Year
			s.FirstDeficitYear = &y
		}
		if s.DepletionYear == nil && r.IsDepleted() {
			y := r.Year
			s.DepletionYear = &y
		}
	}
	return s, nil
}

// Elasticity is the central difference (up - down) / 2 of each milestone.
// A year field is nil when either side never reached that milestone.
type Elasticity struct {
	MaxReserve       decimal.Decimal `json:"max_reserve"`
	MaxReserveYear   float64         `json:"max_reserve_year"`
	FirstDeficitYear *float64        `json:"first_deficit_year"`
	DepletionYear    *float64        `json:"depletion_year"`
}

// SensitivityResult holds the base run and the four shifted runs.
type SensitivityResult struct {
	ContributionRate  float64    `json:"contribution_rate"`
	IncomeReplacement float64    `json:"income_replacement"`
	Delta             float64    `json:"delta"`
	Base              RunSummary `json:"base"`
	ContributionUp    RunSummary `json:"contribution_up"`
	ContributionDown  RunSummary `json:"contribution_down"`
	ReplacementUp     RunSummary `json:"replacement_up"`
	ReplacementDown   RunSummary `json:"replacement_down"`
	Contribution      Elasticity `json:"contribution_elasticity"`
	Replacement       Elasticity `json:"replacement_elasticity"`
}

// AnalyzeSensitivity shifts the contribution rate and the income replacement
// rate by ±delta and reports the central differences. The five deterministic
// runs are independent and run concurrently.
func AnalyzeSensitivity(ctx context.Context, cfg *domain.Configuration, delta float64, logger Logger) (*SensitivityResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrInvalidConfiguration)
	}
	if delta <= 0 {
		return nil, fmt.Errorf("%w: sensitivity delta must be positive", ErrInvalidConfiguration)
	}
	cr := cfg.Finance.ContributionRate
	ir := cfg.Benefit.IncomeReplacement
	variants := []struct{ contribution, replacement float64 }{
		{cr, ir},
		{cr + delta, ir},
		{cr - delta, ir},
		{cr, ir + delta},
		{cr, ir - delta},
	}
	summaries := make([]RunSummary, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			s, err := runPolicy(gctx, cfg, v.contribution, v.replacement, logger)
			if err != nil {
				return fmt.Errorf("contribution %.3f replacement %.3f: %w", v.contribution, v.replacement, err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &SensitivityResult{
		ContributionRate:  cr,
		IncomeReplacement: ir,
		Delta:             delta,
		Base:              summaries[0],
		ContributionUp:    summaries[1],
		ContributionDown:  summaries[2],
		ReplacementUp:     summaries[3],
		ReplacementDown:   summaries[4],
	}
	res.Contribution = elasticity(res.ContributionUp, res.ContributionDown)
	res.Replacement = elasticity(res.ReplacementUp, res.ReplacementDown)
	return res, nil
}

func elasticity(up, down RunSummary) Elasticity {
	two := decimal.NewFromInt(2)
	return Elasticity{
		MaxReserve:       up.MaxReserve.Sub(down.MaxReserve).Div(two),
		MaxReserveYear:   float64(up.MaxReserveYear-down.MaxReserveYear) / 2,
		FirstDeficitYear: yearDifference(up.FirstDeficitYear, down.FirstDeficitYear),
		DepletionYear:    yearDifference(up.DepletionYear, down.DepletionYear),
	}
}

func yearDifference(up, down *int) *float64 {
	if up == nil || down == nil {
		return nil
	}
	d := float64(*up-*down) / 2
	return &d
}

// SweepGrid lists the policy combinations to evaluate.
type SweepGrid struct {
	ContributionRates []float64 `yaml:"contribution_rates" json:"contribution_rates"`
	ReplacementRates  []float64 `yaml:"replacement_rates" json:"replacement_rates"`
}

// RateSteps returns from, from+step, ... up to and including to, rounded to
// four decimals so accumulated float error does not drop the last step.
func RateSteps(from, to, step float64) []float64 {
	if step <= 0 || to < from {
		return nil
	}
	n := int(math.Floor((to-from)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round((from+float64(i)*step)*1e4) / 1e4
	}
	return out
}

// DefaultSweepGrid covers contribution rates 7%..15% and replacement rates 40%..50%.
func DefaultSweepGrid() SweepGrid {
	return SweepGrid{
		ContributionRates: RateSteps(0.07, 0.15, 0.01),
		ReplacementRates:  RateSteps(0.40, 0.50, 0.01),
	}
}

// SweepPoint is one evaluated policy combination.
type SweepPoint struct {
	ContributionRate  float64    `json:"contribution_rate"`
	IncomeReplacement float64    `json:"income_replacement"`
	Summary           RunSummary `json:"summary"`
}

// SweepPolicies runs a deterministic projection for every grid combination.
// Results are in grid order: contribution rates outer, replacement rates inner.
func SweepPolicies(ctx context.Context, cfg *domain.Configuration, grid SweepGrid, workers int, logger Logger) ([]SweepPoint, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrInvalidConfiguration)
	}
	if len(grid.ContributionRates) == 0 || len(grid.ReplacementRates) == 0 {
		return nil, fmt.Errorf("%w: sweep grid is empty", ErrInvalidConfiguration)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	points := make([]SweepPoint, 0, len(grid.ContributionRates)*len(grid.ReplacementRates))
	for _, c := range grid.ContributionRates {
		for _, r := range grid.ReplacementRates {
			points = append(points, SweepPoint{ContributionRate: c, IncomeReplacement: r})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range points {
		g.Go(func() error {
			p := &points[i]
			s, err := runPolicy(gctx, cfg, p.ContributionRate, p.IncomeReplacement, logger)
			if err != nil {
				return fmt.Errorf("contribution %.3f replacement %.3f: %w", p.ContributionRate, p.IncomeReplacement, err)
			}
			p.Summary = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// runPolicy runs one deterministic projection with the given policy rates.
func runPolicy(ctx context.Context, base *domain.Configuration, contribution, replacement float64, logger Logger) (RunSummary, error) {
	cfg := *base
	cfg.Finance.ContributionRate = contribution
	cfg.Benefit.IncomeReplacement = replacement
	cfg.Stochastic.Enabled = false
	if logger == nil {
		logger = NopLogger{}
	}
	engine, err := NewProjectionEngineWithLogger(&cfg, logger)
	if err != nil {
		return RunSummary{}, err
	}
	res, err := engine.RunDeterministic(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	return SummarizeRun(res.Financial)
}
