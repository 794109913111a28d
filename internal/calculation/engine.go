package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/npsmodel/projection/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// ProjectionEngine orchestrates the population, macro, contribution, benefit
// and reserve fund sub-models over the configured horizon.
type ProjectionEngine struct {
	cfg     domain.Configuration
	Logger  Logger
	Metrics *metrics.Metrics

	seed         domain.PopulationTable
	inflation    *RateCurve
	returnCurve  *RateCurve
	population   *PopulationProjector
	macro        *MacroEconomyProjector
	subscribers  *SubscriberEstimator
	benefits     *BenefitEstimator
	portfolio    *InvestmentReturnSampler
	stochastic   *InvestmentReturnSampler
	returnSource string

	mu    sync.Mutex
	cache map[domain.Horizon]*trajectory
}

// NewProjectionEngine validates the configuration and builds every sub-model.
// Configuration problems are reported here, before any projection runs.
func NewProjectionEngine(cfg *domain.Configuration) (*ProjectionEngine, error) {
	return NewProjectionEngineWithLogger(cfg, NopLogger{})
}

// NewProjectionEngineWithLogger is NewProjectionEngine with a logger in place
// during construction, so portfolio warnings are not lost.
func NewProjectionEngineWithLogger(cfg *domain.Configuration, logger Logger) (*ProjectionEngine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is required", ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = NopLogger{}
	}
	h := cfg.Horizon
	if h.StartYear == 0 || h.EndYear < h.StartYear {
		return nil, fmt.Errorf("%w: horizon %d-%d is not valid", ErrInvalidConfiguration, h.StartYear, h.EndYear)
	}

	e := &ProjectionEngine{
		cfg:    *cfg,
		Logger: logger,
		cache:  make(map[domain.Horizon]*trajectory),
	}

	var err error
	if e.inflation, err = NewRateCurve("inflation_rate", cfg.Economic.InflationRate); err != nil {
		return nil, err
	}
	if e.population, err = NewPopulationProjector(cfg.Demographic); err != nil {
		return nil, err
	}
	if e.seed, err = BuildSeedPopulation(cfg.Population, cfg.Demographic.MaxAge); err != nil {
		return nil, err
	}
	if e.macro, err = NewMacroEconomyProjector(h.StartYear, cfg.Economic, e.inflation); err != nil {
		return nil, err
	}
	if e.subscribers, err = NewSubscriberEstimator(h.StartYear, cfg.Brackets, e.inflation); err != nil {
		return nil, err
	}
	if e.benefits, err = NewBenefitEstimator(h.StartYear, cfg.Demographic.ElderlyAge, cfg.Benefit, e.inflation); err != nil {
		return nil, err
	}

	switch cfg.Finance.ReturnSource {
	case "", domain.ReturnSourcePortfolio:
		e.returnSource = domain.ReturnSourcePortfolio
	case domain.ReturnSourceCurve:
		e.returnSource = domain.ReturnSourceCurve
		if e.returnCurve, err = NewRateCurve("nominal_investment_return", cfg.Finance.NominalInvestmentReturn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown return source %q", ErrInvalidConfiguration, cfg.Finance.ReturnSource)
	}
	if cfg.Finance.InitialReserve.IsNegative() || cfg.Finance.InitialRealReserve.IsNegative() {
		return nil, fmt.Errorf("%w: initial reserve cannot be negative", ErrInvalidConfiguration)
	}

	if err := e.setPortfolio(cfg.Portfolio, cfg.Stochastic.Enabled); err != nil {
		return nil, err
	}
	if cfg.Stochastic.Enabled && cfg.Stochastic.Simulations <= 0 {
		return nil, fmt.Errorf("%w: stochastic runs need a positive simulation count", ErrInvalidConfiguration)
	}
	return e, nil
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *ProjectionEngine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Config returns a copy of the engine's configuration.
func (e *ProjectionEngine) Config() domain.Configuration { return e.cfg }

// Sampler returns the deterministic portfolio sampler.
func (e *ProjectionEngine) Sampler() *InvestmentReturnSampler { return e.portfolio }

// Rescenario replaces the portfolio between runs. The cached demographic and
// macro trajectory stays valid because it does not depend on returns.
// On error the previous portfolio is kept.
func (e *ProjectionEngine) Rescenario(spec domain.PortfolioSpec) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setPortfolio(spec, e.stochastic != nil || e.cfg.Stochastic.Enabled)
}

func (e *ProjectionEngine) setPortfolio(spec domain.PortfolioSpec, stochastic bool) error {
	portfolio, err := NewInvestmentReturnSampler(spec, e.Logger)
	if err != nil {
		return err
	}
	var sampler *InvestmentReturnSampler
	if stochastic {
		if sampler, err = NewStochasticSampler(spec, NopLogger{}); err != nil {
			return err
		}
	}
	e.portfolio = portfolio
	e.stochastic = sampler
	e.cfg.Portfolio = spec
	return nil
}

func (e *ProjectionEngine) deterministicReturn(year int) float64 {
	if e.returnSource == domain.ReturnSourceCurve {
		return e.returnCurve.ValueAt(year)
	}
	return e.portfolio.ExpectedPortfolioReturn()
}

// RunOutcome holds the result of Run. Exactly one field is set.
type RunOutcome struct {
	Deterministic *domain.ProjectionResult
	Ensemble      *domain.EnsembleResult
}

// Run dispatches on the configured stochastic flag.
func (e *ProjectionEngine) Run(ctx context.Context) (RunOutcome, error) {
	if e.cfg.Stochastic.Enabled {
		res, err := e.RunStochastic(ctx)
		return RunOutcome{Ensemble: res}, err
	}
	res, err := e.RunDeterministic(ctx)
	return RunOutcome{Deterministic: res}, err
}

// RunDeterministic makes a single forward pass over the horizon, threading the
// population table and reserve fund from one year to the next.
func (e *ProjectionEngine) RunDeterministic(ctx context.Context) (*domain.ProjectionResult, error) {
	started := nowFunc()
	h := e.cfg.Horizon
	e.Logger.Infof("deterministic projection %d-%d (return source %s)", h.StartYear, h.EndYear, e.returnSource)

	builder := e.newTrajectoryBuilder()
	ledger := NewReserveFundLedger(e.cfg.Finance.InitialReserve, e.cfg.Finance.InitialRealReserve, e.cfg.Finance)
	financial := make([]domain.FinancialRecord, 0, h.Years())

	for year := h.StartYear; year <= h.EndYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := builder.advance(year); err != nil {
			return nil, err
		}
		i := year - h.StartYear
		rec, err := ledger.Apply(builder.t.ledgerInput(i, e.deterministicReturn(year)))
		if err != nil {
			return nil, err
		}
		financial = append(financial, rec)
		e.Logger.Debugf("year %d reserve=%s balance=%s", year, rec.NominalReserveFund.StringFixed(0), rec.NominalBalance.StringFixed(0))
	}
	e.storeTrajectory(builder.t)

	e.Metrics.ObserveRun(metrics.ModeDeterministic, nowFunc().Sub(started))
	return &domain.ProjectionResult{
		RunID:       uuid.NewString(),
		Financial:   financial,
		Demographic: builder.t.demographicCopy(),
		Economic:    append([]domain.EconomicSnapshot(nil), builder.t.economic...),
	}, nil
}

// RunStochastic runs the Monte Carlo ensemble. The demographic, macro,
// subscriber and benefit trajectory is computed once and shared; each path
// gets its own ledger and draw stream and writes only its own slot.
func (e *ProjectionEngine) RunStochastic(ctx context.Context) (*domain.EnsembleResult, error) {
	started := nowFunc()
	settings := e.cfg.Stochastic
	if settings.Simulations <= 0 {
		return nil, fmt.Errorf("%w: stochastic runs need a positive simulation count", ErrInvalidConfiguration)
	}

	e.mu.Lock()
	if e.stochastic == nil {
		sampler, err := NewStochasticSampler(e.cfg.Portfolio, NopLogger{})
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		e.stochastic = sampler
	}
	sampler := e.stochastic
	e.mu.Unlock()

	t, err := e.sharedTrajectory(ctx)
	if err != nil {
		return nil, err
	}

	seed := resolveSeed(settings.Seed)
	workers := settings.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	e.Logger.Infof("stochastic projection: %d simulations, seed %d, %d workers", settings.Simulations, seed, workers)

	paths := make([][]domain.FinancialRecord, settings.Simulations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for sim := 0; sim < settings.Simulations; sim++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			path, err := e.runPath(gctx, t, sampler, uint64(seed), sim)
			if err != nil {
				return fmt.Errorf("simulation %d: %w", sim, err)
			}
			paths[sim] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.EnsembleResult{
		RunID:       uuid.NewString(),
		Seed:        seed,
		Simulations: settings.Simulations,
		Paths:       paths,
		Demographic: t.demographicCopy(),
	}
	e.Metrics.AddPaths(settings.Simulations)
	e.Metrics.SetDepletedRatio(depletedShare(paths))
	e.Metrics.ObserveRun(metrics.ModeStochastic, nowFunc().Sub(started))
	return result, nil
}

func (e *ProjectionEngine) runPath(ctx context.Context, t *trajectory, sampler *InvestmentReturnSampler, seed uint64, sim int) ([]domain.FinancialRecord, error) {
	stream := sampler.Stream(seed, sim)
	ledger := NewReserveFundLedger(e.cfg.Finance.InitialReserve, e.cfg.Finance.InitialRealReserve, e.cfg.Finance)
	records := make([]domain.FinancialRecord, len(t.economic))
	for i := range t.economic {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := ledger.Apply(t.ledgerInput(i, stream.Next()))
		if err != nil {
			return nil, err
		}
		rec.Simulation = sim
		records[i] = rec
	}
	return records, nil
}

// sharedTrajectory returns the cached trajectory for the horizon, building it once.
func (e *ProjectionEngine) sharedTrajectory(ctx context.Context) (*trajectory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.cache[e.cfg.Horizon]; ok {
		e.Metrics.IncrementCacheHit()
		return t, nil
	}
	b := e.newTrajectoryBuilder()
	for year := e.cfg.Horizon.StartYear; year <= e.cfg.Horizon.EndYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.advance(year); err != nil {
			return nil, err
		}
	}
	e.cache[e.cfg.Horizon] = b.t
	return b.t, nil
}

func (e *ProjectionEngine) storeTrajectory(t *trajectory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[t.horizon]; !ok {
		e.cache[t.horizon] = t
	}
}

// Demographics returns the demographic records of the cached trajectory.
func (e *ProjectionEngine) Demographics(ctx context.Context) ([]domain.DemographicRecord, error) {
	t, err := e.sharedTrajectory(ctx)
	if err != nil {
		return nil, err
	}
	return t.demographicCopy(), nil
}

// Populations returns the per-year population tables of the cached trajectory.
// The tables are shared; callers must not modify them.
func (e *ProjectionEngine) Populations(ctx context.Context) ([]domain.PopulationTable, error) {
	t, err := e.sharedTrajectory(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.PopulationTable(nil), t.populations...), nil
}
