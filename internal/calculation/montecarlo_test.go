package calculation

import (
	"context"
	"testing"

	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// reservePath builds one path with the given year-end reserves starting in 2023.
func reservePath(sim int, reserves ...int64) []domain.FinancialRecord {
	path := make([]domain.FinancialRecord, len(reserves))
	for i, r := range reserves {
		path[i] = domain.FinancialRecord{
			Simulation:         sim,
			Year:               2023 + i,
			NominalReserveFund: decimal.NewFromInt(r),
			NominalBalance:     decimal.NewFromInt(r / 10),
		}
	}
	return path
}

func TestDepletionYear(t *testing.T) {
	tests := []struct {
		name string
		path []domain.FinancialRecord
		want int
	}{
		{"never depletes", reservePath(0, 100, 90, 80), 0},
		{"depletes in the middle", reservePath(0, 100, 0, 0), 2024},
		{"depleted in the first year", reservePath(0, 0, 0, 10), 2023},
		{"first of two depletions", reservePath(0, 100, 0, 50, 0), 2024},
		{"empty path", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DepletionYear(tt.path); got != tt.want {
				t.Errorf("DepletionYear() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummarizeEnsemble(t *testing.T) {
	result := &domain.EnsembleResult{
		Simulations: 4,
		Paths: [][]domain.FinancialRecord{
			reservePath(0, 100, 200, 300),
			reservePath(1, 100, 0, 0),
			reservePath(2, 100, 50, 0),
			reservePath(3, 100, 400, 500),
		},
	}

	summary, err := SummarizeEnsemble(result)
	if err != nil {
		t.Fatalf("SummarizeEnsemble() error = %v", err)
	}

	if summary.Simulations != 4 {
		t.Errorf("Simulations = %d, want 4", summary.Simulations)
	}
	if len(summary.Years) != 3 {
		t.Fatalf("len(Years) = %d, want 3", len(summary.Years))
	}
	if want := []int{0, 2024, 2025, 0}; !equalInts(summary.DepletionYears, want) {
		t.Errorf("DepletionYears = %v, want %v", summary.DepletionYears, want)
	}
	if !summary.DepletionProbability.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("DepletionProbability = %s, want 0.5", summary.DepletionProbability)
	}
	if summary.P5DepletionYear != 2024 || summary.P95DepletionYear != 2025 {
		t.Errorf("depletion year band = %d..%d, want 2024..2025", summary.P5DepletionYear, summary.P95DepletionYear)
	}

	second := summary.Years[1]
	if second.Year != 2024 {
		t.Errorf("Years[1].Year = %d, want 2024", second.Year)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want float64
	}{
		{"ReserveMean", second.ReserveMean, 162.5},
		{"ReserveMedian", second.ReserveMedian, 125},
		{"ReserveP5", second.ReserveP5, 0},
		{"ReserveP95", second.ReserveP95, 400},
		{"BalanceMedian", second.BalanceMedian, 12.5},
		{"DepletedShare", second.DepletedShare, 0.25},
		{"MeanFinalReserve", summary.MeanFinalReserve, 200},
		{"MedianFinalReserve", summary.MedianFinalReserve, 150},
		{"Bottom5MeanReserve", summary.Bottom5MeanReserve, 0},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromFloat(c.want)) {
			t.Errorf("%s = %s, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSummarizeEnsemble_Errors(t *testing.T) {
	if _, err := SummarizeEnsemble(nil); err == nil {
		t.Error("expected an error for a nil ensemble")
	}
	if _, err := SummarizeEnsemble(&domain.EnsembleResult{}); err == nil {
		t.Error("expected an error for an ensemble without paths")
	}
	ragged := &domain.EnsembleResult{Paths: [][]domain.FinancialRecord{
		reservePath(0, 1, 2),
		reservePath(1, 1),
	}}
	if _, err := SummarizeEnsemble(ragged); err == nil {
		t.Error("expected an error for paths of different lengths")
	}
}

func TestMonteCarloEnsemble_DefaultAssumptions(t *testing.T) {
	engine := newTestEngine(t, stochasticConfig(t, 200, 12345))

	result, err := engine.RunStochastic(context.Background())
	if err != nil {
		t.Fatalf("RunStochastic() error = %v", err)
	}
	summary, err := SummarizeEnsemble(result)
	if err != nil {
		t.Fatalf("SummarizeEnsemble() error = %v", err)
	}

	if p := summary.DepletionProbability.InexactFloat64(); p < 0.9 {
		t.Errorf("DepletionProbability = %.3f, expected nearly every path to deplete", p)
	}
	if summary.MedianDepletionYear < 2045 || summary.MedianDepletionYear > 2065 {
		t.Errorf("MedianDepletionYear = %d, want within 2045..2065", summary.MedianDepletionYear)
	}
	if summary.P5DepletionYear > summary.MedianDepletionYear || summary.MedianDepletionYear > summary.P95DepletionYear {
		t.Errorf("depletion percentiles out of order: %d, %d, %d", summary.P5DepletionYear, summary.MedianDepletionYear, summary.P95DepletionYear)
	}
	for _, y := range summary.Years {
		if y.ReserveP5.GreaterThan(y.ReserveMedian) || y.ReserveMedian.GreaterThan(y.ReserveP95) {
			t.Errorf("year %d reserve percentiles out of order", y.Year)
		}
	}
	if ratio := depletedShare(result.Paths); ratio != summary.DepletionProbability.InexactFloat64() {
		t.Errorf("depletedShare = %v, want %v", ratio, summary.DepletionProbability)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
