package calculation

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// YearDistribution is the cross-path distribution of one year's outcomes.
type YearDistribution struct {
	Year          int             `json:"year"`
	ReserveMean   decimal.Decimal `json:"reserve_mean"`
	ReserveMedian decimal.Decimal `json:"reserve_median"`
	ReserveP5     decimal.Decimal `json:"reserve_p5"`
	ReserveP95    decimal.Decimal `json:"reserve_p95"`
	BalanceMean   decimal.Decimal `json:"balance_mean"`
	BalanceMedian decimal.Decimal `json:"balance_median"`
	BalanceP5     decimal.Decimal `json:"balance_p5"`
	BalanceP95    decimal.Decimal `json:"balance_p95"`
	DepletedShare decimal.Decimal `json:"depleted_share"`
}

// EnsembleSummary aggregates a Monte Carlo ensemble.
type EnsembleSummary struct {
	Simulations          int                `json:"simulations"`
	Years                []YearDistribution `json:"years"`
	DepletionYears       []int              `json:"depletion_years"` // 0 when the path never depletes
	DepletionProbability decimal.Decimal    `json:"depletion_probability"`
	MedianDepletionYear  int                `json:"median_depletion_year,omitempty"`
	P5DepletionYear      int                `json:"p5_depletion_year,omitempty"`
	P95DepletionYear     int                `json:"p95_depletion_year,omitempty"`
	MeanFinalReserve     decimal.Decimal    `json:"mean_final_reserve"`
	MedianFinalReserve   decimal.Decimal    `json:"median_final_reserve"`
	Bottom5MeanReserve   decimal.Decimal    `json:"bottom5_mean_final_reserve"`
}

// SummarizeEnsemble computes per-year percentiles and depletion statistics.
func SummarizeEnsemble(result *domain.EnsembleResult) (*EnsembleSummary, error) {
	if result == nil || len(result.Paths) == 0 {
		return nil, fmt.Errorf("ensemble has no paths")
	}
	years := len(result.Paths[0])
	for sim, p := range result.Paths {
		if len(p) != years {
			return nil, fmt.Errorf("path %d has %d years, want %d", sim, len(p), years)
		}
	}
	if years == 0 {
		return nil, fmt.Errorf("ensemble paths are empty")
	}

	n := len(result.Paths)
	summary := &EnsembleSummary{
		Simulations:    n,
		Years:          make([]YearDistribution, 0, years),
		DepletionYears: make([]int, n),
	}

	reserves := make(stats.Float64Data, n)
	balances := make(stats.Float64Data, n)
	for i := 0; i < years; i++ {
		depleted := 0
		for sim, p := range result.Paths {
			reserves[sim] = p[i].NominalReserveFund.InexactFloat64()
			balances[sim] = p[i].NominalBalance.InexactFloat64()
			if p[i].IsDepleted() {
				depleted++
			}
		}
		rd, err := describe(reserves)
		if err != nil {
			return nil, err
		}
		bd, err := describe(balances)
		if err != nil {
			return nil, err
		}
		summary.Years = append(summary.Years, YearDistribution{
			Year:          result.Paths[0][i].Year,
			ReserveMean:   decimal.NewFromFloat(rd.mean),
			ReserveMedian: decimal.NewFromFloat(rd.median),
			ReserveP5:     decimal.NewFromFloat(rd.p5),
			ReserveP95:    decimal.NewFromFloat(rd.p95),
			BalanceMean:   decimal.NewFromFloat(bd.mean),
			BalanceMedian: decimal.NewFromFloat(bd.median),
			BalanceP5:     decimal.NewFromFloat(bd.p5),
			BalanceP95:    decimal.NewFromFloat(bd.p95),
			DepletedShare: decimal.NewFromInt(int64(depleted)).Div(decimal.NewFromInt(int64(n))),
		})
	}

	var depletionYears stats.Float64Data
	for sim, p := range result.Paths {
		y := DepletionYear(p)
		summary.DepletionYears[sim] = y
		if y != 0 {
			depletionYears = append(depletionYears, float64(y))
		}
	}
	summary.DepletionProbability = decimal.NewFromInt(int64(len(depletionYears))).Div(decimal.NewFromInt(int64(n)))
	if len(depletionYears) > 0 {
		d, err := describe(depletionYears)
		if err != nil {
			return nil, err
		}
		summary.MedianDepletionYear = int(math.Round(d.median))
		summary.P5DepletionYear = int(d.p5)
		summary.P95DepletionYear = int(d.p95)
	}

	final := make(stats.Float64Data, n)
	for sim, p := range result.Paths {
		final[sim] = p[years-1].NominalReserveFund.InexactFloat64()
	}
	fd, err := describe(final)
	if err != nil {
		return nil, err
	}
	summary.MeanFinalReserve = decimal.NewFromFloat(fd.mean)
	summary.MedianFinalReserve = decimal.NewFromFloat(fd.median)
	summary.Bottom5MeanReserve = decimal.NewFromFloat(bottomMean(final, 0.05))
	return summary, nil
}

type distribution struct {
	mean, median, p5, p95 float64
}

func describe(data stats.Float64Data) (distribution, error) {
	var d distribution
	var err error
	if d.mean, err = stats.Mean(data); err != nil {
		return d, err
	}
	if d.median, err = stats.Median(data); err != nil {
		return d, err
	}
	if d.p5, err = stats.PercentileNearestRank(data, 5); err != nil {
		return d, err
	}
	if d.p95, err = stats.PercentileNearestRank(data, 95); err != nil {
		return d, err
	}
	return d, nil
}

// bottomMean averages the lowest share of data (at least one value).
func bottomMean(data stats.Float64Data, share float64) float64 {
	sorted := append(stats.Float64Data(nil), data...)
	sort.Float64s(sorted)
	k := int(math.Ceil(float64(len(sorted)) * share))
	if k < 1 {
		k = 1
	}
	mean, _ := stats.Mean(sorted[:k])
	return mean
}

// DepletionYear is the first year whose reserve is exhausted after a positive
// previous year. The fund is taken as positive before the first record.
// It returns 0 when the path never depletes.
func DepletionYear(path []domain.FinancialRecord) int {
	prevPositive := true
	for _, rec := range path {
		if prevPositive && rec.IsDepleted() {
			return rec.Year
		}
		prevPositive = !rec.IsDepleted()
	}
	return 0
}

// depletedShare is the fraction of paths that deplete at some point.
func depletedShare(paths [][]domain.FinancialRecord) float64 {
	if len(paths) == 0 {
		return 0
	}
	depleted := 0
	for _, p := range paths {
		if DepletionYear(p) != 0 {
			depleted++
		}
	}
	return float64(depleted) / float64(len(paths))
}
