package calculation

import (
	"testing"

	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestInvestmentReturnSampler_ExpectedReturn(t *testing.T) {
	s, err := NewInvestmentReturnSampler(config.DefaultPortfolio(), nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.04879, s.ExpectedPortfolioReturn(), 1e-12)
	assert.Equal(t, []string{"alternative", "domestic_bond", "domestic_stock", "foreign_bond", "foreign_stock"}, s.Assets())
	assert.False(t, s.Stochastic())
	assert.Zero(t, s.PortfolioVariance())
	assert.Equal(t, s.ExpectedPortfolioReturn(), s.Stream(1, 0).Next(), "a deterministic stream returns the mean")
}

func TestInvestmentReturnSampler_MissingExpectedReturnWarns(t *testing.T) {
	spec := domain.PortfolioSpec{
		Allocation:      domain.AssetWeights{"stocks": 0.6, "gold": 0.4},
		ExpectedReturns: domain.AssetWeights{"stocks": 0.05},
	}
	logger := &recordingLogger{}

	s, err := NewInvestmentReturnSampler(spec, logger)
	require.NoError(t, err)

	assert.Equal(t, []string{"stocks"}, s.Assets())
	assert.InDelta(t, 0.03, s.ExpectedPortfolioReturn(), 1e-12)
	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], `"gold"`)
}

func TestInvestmentReturnSampler_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec domain.PortfolioSpec
	}{
		{"empty allocation", domain.PortfolioSpec{}},
		{"negative weight", domain.PortfolioSpec{
			Allocation:      domain.AssetWeights{"stocks": -0.1},
			ExpectedReturns: domain.AssetWeights{"stocks": 0.05},
		}},
		{"no usable asset", domain.PortfolioSpec{
			Allocation: domain.AssetWeights{"stocks": 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvestmentReturnSampler(tt.spec, nil)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestStochasticSampler_SampleMomentsMatchClosedForm(t *testing.T) {
	s, err := NewStochasticSampler(config.DefaultPortfolio(), nil)
	require.NoError(t, err)
	require.True(t, s.Stochastic())

	variance := s.PortfolioVariance()
	assert.InDelta(t, 0.0031310921, variance, 1e-10)

	const draws = 20000
	stream := s.Stream(2024, 0)
	sample := make([]float64, draws)
	for i := range sample {
		sample[i] = stream.Next()
	}
	mean, sampleVariance := stat.MeanVariance(sample, nil)

	assert.InDelta(t, s.ExpectedPortfolioReturn(), mean, 0.002)
	assert.InEpsilon(t, variance, sampleVariance, 0.05)
}

func TestStochasticSampler_CorrelatedVariance(t *testing.T) {
	spec := domain.PortfolioSpec{
		Allocation:      domain.AssetWeights{"a": 0.5, "b": 0.5},
		ExpectedReturns: domain.AssetWeights{"a": 0.04, "b": 0.06},
		Volatilities:    domain.AssetWeights{"a": 0.1, "b": 0.2},
		Correlation: domain.CorrelationMatrix{
			Assets: []string{"b", "a"},
			Matrix: [][]float64{{1, 0.5}, {0.5, 1}},
		},
	}

	s, err := NewStochasticSampler(spec, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.0175, s.PortfolioVariance(), 1e-12)
}

func TestStochasticSampler_StreamsAreReproducible(t *testing.T) {
	s, err := NewStochasticSampler(config.DefaultPortfolio(), nil)
	require.NoError(t, err)

	a, b, other := s.Stream(7, 3), s.Stream(7, 3), s.Stream(7, 4)
	var differs bool
	for i := 0; i < 50; i++ {
		x := a.Next()
		assert.Equal(t, x, b.Next(), "draw %d", i)
		if other.Next() != x {
			differs = true
		}
	}
	assert.True(t, differs, "different simulations draw different streams")
}

func TestStochasticSampler_Errors(t *testing.T) {
	base := domain.PortfolioSpec{
		Allocation:      domain.AssetWeights{"a": 0.4, "b": 0.3, "c": 0.3},
		ExpectedReturns: domain.AssetWeights{"a": 0.05, "b": 0.05, "c": 0.05},
		Volatilities:    domain.AssetWeights{"a": 0.1, "b": 0.1, "c": 0.1},
	}

	t.Run("not positive definite", func(t *testing.T) {
		spec := base
		spec.Correlation = domain.CorrelationMatrix{
			Assets: []string{"a", "b", "c"},
			Matrix: [][]float64{{1, 0.9, -0.9}, {0.9, 1, 0.9}, {-0.9, 0.9, 1}},
		}
		_, err := NewStochasticSampler(spec, nil)
		assert.ErrorIs(t, err, ErrNotPositiveDefinite)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "for assets a, b, c")
	})

	tests := []struct {
		name   string
		mutate func(spec *domain.PortfolioSpec)
	}{
		{"missing volatility", func(spec *domain.PortfolioSpec) {
			spec.Volatilities = domain.AssetWeights{"a": 0.1, "b": 0.1}
		}},
		{"zero volatility", func(spec *domain.PortfolioSpec) {
			spec.Volatilities = domain.AssetWeights{"a": 0.1, "b": 0.1, "c": 0}
		}},
		{"asymmetric", func(spec *domain.PortfolioSpec) {
			spec.Correlation = domain.CorrelationMatrix{
				Assets: []string{"a", "b", "c"},
				Matrix: [][]float64{{1, 0.2, 0}, {0.3, 1, 0}, {0, 0, 1}},
			}
		}},
		{"diagonal not one", func(spec *domain.PortfolioSpec) {
			spec.Correlation = domain.CorrelationMatrix{
				Assets: []string{"a", "b", "c"},
				Matrix: [][]float64{{0.9, 0, 0}, {0, 1, 0}, {0, 0, 1}},
			}
		}},
		{"missing asset", func(spec *domain.PortfolioSpec) {
			spec.Correlation = domain.CorrelationMatrix{
				Assets: []string{"a", "b"},
				Matrix: [][]float64{{1, 0}, {0, 1}},
			}
		}},
		{"ragged", func(spec *domain.PortfolioSpec) {
			spec.Correlation = domain.CorrelationMatrix{
				Assets: []string{"a", "b", "c"},
				Matrix: [][]float64{{1, 0, 0}, {0, 1}, {0, 0, 1}},
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base
			tt.mutate(&spec)
			_, err := NewStochasticSampler(spec, nil)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestRealReturn(t *testing.T) {
	assert.InDelta(t, 1.05/1.02-1, RealReturn(0.05, 0.02), 1e-15)
	assert.Zero(t, RealReturn(0.02, 0.02))
}
