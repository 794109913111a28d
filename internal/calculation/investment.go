package calculation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/npsmodel/projection/internal/domain"
	"gonum.org/v1/gonum/mat"
)

// InvestmentReturnSampler reduces a PortfolioSpec to portfolio returns.
// The deterministic form only needs allocation and expected returns; the
// stochastic form adds the covariance structure and its Cholesky factor.
type InvestmentReturnSampler struct {
	assets  []string
	weights *mat.VecDense
	means   *mat.VecDense

	cov   *mat.SymDense
	lower *mat.TriDense
}

// NewInvestmentReturnSampler builds the deterministic sampler. Allocation
// entries without an expected return are excluded with a warning.
func NewInvestmentReturnSampler(spec domain.PortfolioSpec, logger Logger) (*InvestmentReturnSampler, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	if len(spec.Allocation) == 0 {
		return nil, fmt.Errorf("%w: portfolio allocation is empty", ErrInvalidConfiguration)
	}
	names := make([]string, 0, len(spec.Allocation))
	for name := range spec.Allocation {
		names = append(names, name)
	}
	sort.Strings(names)

	var assets []string
	var weights, means []float64
	for _, name := range names {
		w := spec.Allocation[name]
		if math.IsNaN(w) || w < 0 {
			return nil, fmt.Errorf("%w: allocation weight for %s must be non-negative", ErrInvalidConfiguration, name)
		}
		r, ok := spec.ExpectedReturns[name]
		if !ok {
			logger.Warnf("asset %q has allocation %.3f but no expected return; excluded from portfolio", name, w)
			continue
		}
		assets = append(assets, name)
		weights = append(weights, w)
		means = append(means, r)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: no allocated asset has an expected return", ErrInvalidConfiguration)
	}
	return &InvestmentReturnSampler{
		assets:  assets,
		weights: mat.NewVecDense(len(weights), weights),
		means:   mat.NewVecDense(len(means), means),
	}, nil
}

// NewStochasticSampler builds a sampler able to draw correlated returns.
// Cov[i][j] = corr[i][j] * vol_i * vol_j, factorised by Cholesky.
func NewStochasticSampler(spec domain.PortfolioSpec, logger Logger) (*InvestmentReturnSampler, error) {
	s, err := NewInvestmentReturnSampler(spec, logger)
	if err != nil {
		return nil, err
	}
	k := len(s.assets)
	vols := make([]float64, k)
	for i, name := range s.assets {
		v, ok := spec.Volatilities[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing volatility for %s", ErrInvalidConfiguration, name)
		}
		if !(v > 0) {
			return nil, fmt.Errorf("%w: volatility for %s must be positive", ErrInvalidConfiguration, name)
		}
		vols[i] = v
	}
	corr, err := correlationFor(s.assets, spec.Correlation)
	if err != nil {
		return nil, err
	}

	cov := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			cov.SetSym(i, j, corr.At(i, j)*vols[i]*vols[j])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("%w: %w for assets %s", ErrInvalidConfiguration, ErrNotPositiveDefinite, strings.Join(s.assets, ", "))
	}
	lower := mat.NewTriDense(k, mat.Lower, nil)
	chol.LTo(lower)

	s.cov = cov
	s.lower = lower
	return s, nil
}

// correlationFor selects the sub-matrix for assets. An empty matrix is identity.
func correlationFor(assets []string, cm domain.CorrelationMatrix) (*mat.SymDense, error) {
	k := len(assets)
	out := mat.NewSymDense(k, nil)
	if cm.IsZero() {
		for i := 0; i < k; i++ {
			out.SetSym(i, i, 1)
		}
		return out, nil
	}
	n := len(cm.Assets)
	if len(cm.Matrix) != n {
		return nil, fmt.Errorf("%w: correlation matrix has %d rows for %d assets", ErrInvalidConfiguration, len(cm.Matrix), n)
	}
	index := make(map[string]int, n)
	for i, name := range cm.Assets {
		if len(cm.Matrix[i]) != n {
			return nil, fmt.Errorf("%w: correlation row %s has %d columns, want %d", ErrInvalidConfiguration, name, len(cm.Matrix[i]), n)
		}
		index[name] = i
	}
	for i := 0; i < n; i++ {
		if math.Abs(cm.Matrix[i][i]-1) > 1e-9 {
			return nil, fmt.Errorf("%w: correlation diagonal for %s must be 1", ErrInvalidConfiguration, cm.Assets[i])
		}
		for j := 0; j < n; j++ {
			c := cm.Matrix[i][j]
			if math.Abs(c-cm.Matrix[j][i]) > 1e-9 {
				return nil, fmt.Errorf("%w: correlation matrix is not symmetric at %s/%s", ErrInvalidConfiguration, cm.Assets[i], cm.Assets[j])
			}
			if c < -1 || c > 1 {
				return nil, fmt.Errorf("%w: correlation %s/%s outside [-1, 1]", ErrInvalidConfiguration, cm.Assets[i], cm.Assets[j])
			}
		}
	}
	for i, a := range assets {
		ai, ok := index[a]
		if !ok {
			return nil, fmt.Errorf("%w: correlation matrix has no entry for %s", ErrInvalidConfiguration, a)
		}
		for j := i; j < k; j++ {
			out.SetSym(i, j, cm.Matrix[ai][index[assets[j]]])
		}
	}
	return out, nil
}

// Assets returns the assets included in the portfolio, sorted by name.
func (s *InvestmentReturnSampler) Assets() []string {
	return append([]string(nil), s.assets...)
}

// ExpectedPortfolioReturn is the allocation-weighted expected nominal return.
func (s *InvestmentReturnSampler) ExpectedPortfolioReturn() float64 {
	return mat.Dot(s.weights, s.means)
}

// Stochastic reports whether the sampler can draw random returns.
func (s *InvestmentReturnSampler) Stochastic() bool { return s.lower != nil }

// PortfolioVariance is the closed-form wᵗΣw. It is zero for a deterministic sampler.
func (s *InvestmentReturnSampler) PortfolioVariance() float64 {
	if s.cov == nil {
		return 0
	}
	return mat.Inner(s.weights, s.cov, s.weights)
}

// Stream returns an independent draw stream for one simulation path.
// The same (seed, simulation) pair always yields the same sequence.
func (s *InvestmentReturnSampler) Stream(seed uint64, simulation int) *ReturnStream {
	k := len(s.assets)
	return &ReturnStream{
		sampler: s,
		rng:     rand.New(rand.NewPCG(seed, uint64(simulation))),
		z:       mat.NewVecDense(k, nil),
		x:       mat.NewVecDense(k, nil),
	}
}

// ReturnStream draws correlated annual portfolio returns. Single owner only.
type ReturnStream struct {
	sampler *InvestmentReturnSampler
	rng     *rand.Rand
	z       *mat.VecDense
	x       *mat.VecDense
}

// Next draws one year's nominal portfolio return: wᵗ(μ + L z), z ~ N(0, I).
func (rs *ReturnStream) Next() float64 {
	s := rs.sampler
	if s.lower == nil {
		return s.ExpectedPortfolioReturn()
	}
	for i := 0; i < rs.z.Len(); i++ {
		rs.z.SetVec(i, rs.rng.NormFloat64())
	}
	rs.x.MulVec(s.lower, rs.z)
	rs.x.AddVec(rs.x, s.means)
	return mat.Dot(s.weights, rs.x)
}

// RealReturn deflates a nominal return: (1+n)/(1+i) - 1.
func RealReturn(nominal, inflation float64) float64 {
	return (1+nominal)/(1+inflation) - 1
}
