package calculation

import (
	"fmt"
	"math"
	"sort"

	"github.com/npsmodel/projection/internal/domain"
)

// RateCurve interpolates a sparse year -> rate table.
// It is immutable after construction and safe for concurrent use.
type RateCurve struct {
	name   string
	years  []int
	values []float64
}

// NewRateCurve validates and sorts the table.
func NewRateCurve(name string, table domain.RateTable) (*RateCurve, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%s: %w: table is empty", name, ErrInvalidRateTable)
	}
	years := make([]int, 0, len(table))
	for y, v := range table {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s: %w: non-finite value for %d", name, ErrInvalidRateTable, y)
		}
		years = append(years, y)
	}
	sort.Ints(years)
	values := make([]float64, len(years))
	for i, y := range years {
		values[i] = table[y]
	}
	return &RateCurve{name: name, years: years, values: values}, nil
}

// MustRateCurve is NewRateCurve for static tables known to be valid.
func MustRateCurve(name string, table domain.RateTable) *RateCurve {
	c, err := NewRateCurve(name, table)
	if err != nil {
		panic(err)
	}
	return c
}

// Name identifies the curve in logs and errors.
func (rc *RateCurve) Name() string { return rc.name }

// ValueAt returns the rate for year. Outside the table the nearest end value
// is returned unchanged.
func (rc *RateCurve) ValueAt(year int) float64 {
	last := len(rc.years) - 1
	if year >= rc.years[last] {
		return rc.values[last]
	}
	if year <= rc.years[0] {
		return rc.values[0]
	}
	// first key strictly greater than year; year lies in [years[i-1], years[i])
	i := sort.SearchInts(rc.years, year+1)
	y0, y1 := rc.years[i-1], rc.years[i]
	v0, v1 := rc.values[i-1], rc.values[i]
	return v0 + (v1-v0)*float64(year-y0)/float64(y1-y0)
}

// CumulativeFactor compounds the curve from base (exclusive) to year (inclusive).
// It is 1 for year <= base.
func (rc *RateCurve) CumulativeFactor(base, year int) float64 {
	factor := 1.0
	for y := base + 1; y <= year; y++ {
		factor *= 1 + rc.ValueAt(y)
	}
	return factor
}

// CumulativeFactors returns CumulativeFactor(base, y) for every y in [start, end],
// built forward in one pass.
func (rc *RateCurve) CumulativeFactors(base, start, end int) []float64 {
	if end < start {
		return nil
	}
	out := make([]float64, 0, end-start+1)
	factor := rc.CumulativeFactor(base, start)
	out = append(out, factor)
	for y := start + 1; y <= end; y++ {
		if y > base {
			factor *= 1 + rc.ValueAt(y)
		}
		out = append(out, factor)
	}
	return out
}
