package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/npsmodel/projection/internal/domain"
)

// Run modes stored in projection_runs.mode.
const (
	ModeDeterministic = "deterministic"
	ModeStochastic    = "stochastic"
)

// batchSize bounds the rows per multi-row INSERT (15 columns stay well below
// the 65535 bind parameter limit).
const batchSize = 1000

// ErrDuplicateRun is returned when a run id was already saved.
var ErrDuplicateRun = errors.New("run already stored")

// ErrRunNotFound is returned when no run matches the id.
var ErrRunNotFound = errors.New("run not found")

// Config holds database connection configuration
type Config struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// DefaultConfig returns reasonable defaults for database connections
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    30 * time.Second,
	}
}

// RunStore persists projection runs in PostgreSQL.
type RunStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// nowFunc stamps created_at (override in tests).
var nowFunc = time.Now

// Open connects with the lib/pq driver and pings the server.
func Open(ctx context.Context, cfg Config) (*RunStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db, cfg.QueryTimeout), nil
}

// New wraps an open connection. A non-positive timeout means 30 seconds.
func New(db *sqlx.DB, timeout time.Duration) *RunStore {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RunStore{db: db, timeout: timeout}
}

// Close closes the underlying connection pool.
func (s *RunStore) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS projection_runs (
	run_id      TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	label       TEXT NOT NULL DEFAULT '',
	seed        BIGINT,
	simulations INTEGER NOT NULL,
	start_year  INTEGER NOT NULL,
	end_year    INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS financial_records (
	run_id               TEXT NOT NULL REFERENCES projection_runs(run_id) ON DELETE CASCADE,
	simulation           INTEGER NOT NULL,
	year                 INTEGER NOT NULL,
	nominal_revenue      NUMERIC NOT NULL,
	real_revenue         NUMERIC NOT NULL,
	nominal_expenditure  NUMERIC NOT NULL,
	real_expenditure     NUMERIC NOT NULL,
	nominal_balance      NUMERIC NOT NULL,
	real_balance         NUMERIC NOT NULL,
	nominal_reserve_fund NUMERIC NOT NULL,
	real_reserve_fund    NUMERIC NOT NULL,
	fund_ratio           NUMERIC NOT NULL,
	nominal_gdp          NUMERIC NOT NULL,
	real_gdp             NUMERIC NOT NULL,
	portfolio_return     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, simulation, year)
);
CREATE TABLE IF NOT EXISTS demographic_records (
	run_id                 TEXT NOT NULL REFERENCES projection_runs(run_id) ON DELETE CASCADE,
	year                   INTEGER NOT NULL,
	total_population       DOUBLE PRECISION NOT NULL,
	working_age_population DOUBLE PRECISION NOT NULL,
	elderly_population     DOUBLE PRECISION NOT NULL,
	elderly_dependency     DOUBLE PRECISION NOT NULL,
	total_subscribers      DOUBLE PRECISION NOT NULL,
	total_income_nominal   NUMERIC NOT NULL,
	total_income_real      NUMERIC NOT NULL,
	PRIMARY KEY (run_id, year)
);`

// EnsureSchema creates the tables when they do not exist.
func (s *RunStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const insertRun = `
	INSERT INTO projection_runs (run_id, mode, label, seed, simulations, start_year, end_year, created_at)
	VALUES (:run_id, :mode, :label, :seed, :simulations, :start_year, :end_year, :created_at)`

const insertFinancial = `
	INSERT INTO financial_records (run_id, simulation, year, nominal_revenue, real_revenue,
		nominal_expenditure, real_expenditure, nominal_balance, real_balance,
		nominal_reserve_fund, real_reserve_fund, fund_ratio, nominal_gdp, real_gdp, portfolio_return)
	VALUES (:run_id, :simulation, :year, :nominal_revenue, :real_revenue,
		:nominal_expenditure, :real_expenditure, :nominal_balance, :real_balance,
		:nominal_reserve_fund, :real_reserve_fund, :fund_ratio, :nominal_gdp, :real_gdp, :portfolio_return)`

const insertDemographic = `
	INSERT INTO demographic_records (run_id, year, total_population, working_age_population,
		elderly_population, elderly_dependency, total_subscribers, total_income_nominal, total_income_real)
	VALUES (:run_id, :year, :total_population, :working_age_population,
		:elderly_population, :elderly_dependency, :total_subscribers, :total_income_nominal, :total_income_real)`

// SaveProjection stores a deterministic run atomically.
func (s *RunStore) SaveProjection(ctx context.Context, result *domain.ProjectionResult) error {
	if result == nil || len(result.Financial) == 0 {
		return fmt.Errorf("projection has no financial records")
	}
	run := RunRow{
		RunID:       result.RunID,
		Mode:        ModeDeterministic,
		Label:       result.Label,
		Simulations: 1,
		StartYear:   result.Financial[0].Year,
		EndYear:     result.Financial[len(result.Financial)-1].Year,
		CreatedAt:   nowFunc().UTC(),
	}
	return s.save(ctx, run, [][]domain.FinancialRecord{result.Financial}, result.Demographic)
}

// SaveEnsemble stores every path of a Monte Carlo run atomically.
func (s *RunStore) SaveEnsemble(ctx context.Context, result *domain.EnsembleResult) error {
	if result == nil || len(result.Paths) == 0 || len(result.Paths[0]) == 0 {
		return fmt.Errorf("ensemble has no paths")
	}
	first := result.Paths[0]
	run := RunRow{
		RunID:       result.RunID,
		Mode:        ModeStochastic,
		Label:       result.Label,
		Seed:        sql.NullInt64{Int64: result.Seed, Valid: true},
		Simulations: len(result.Paths),
		StartYear:   first[0].Year,
		EndYear:     first[len(first)-1].Year,
		CreatedAt:   nowFunc().UTC(),
	}
	return s.save(ctx, run, result.Paths, result.Demographic)
}

func (s *RunStore) save(ctx context.Context, run RunRow, paths [][]domain.FinancialRecord, demo []domain.DemographicRecord) error {
	if run.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	rows := 0
	for _, p := range paths {
		rows += len(p)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout*time.Duration(rows/batchSize+1))
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertRun, run); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, run.RunID)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	financial := make([]FinancialRow, 0, rows)
	for _, p := range paths {
		for _, rec := range p {
			financial = append(financial, NewFinancialRow(run.RunID, rec))
		}
	}
	for _, chunk := range chunks(len(financial), batchSize) {
		if _, err := tx.NamedExecContext(ctx, insertFinancial, financial[chunk[0]:chunk[1]]); err != nil {
			return fmt.Errorf("failed to insert financial records: %w", err)
		}
	}

	if len(demo) > 0 {
		demographic := make([]DemographicRow, 0, len(demo))
		for _, d := range demo {
			demographic = append(demographic, NewDemographicRow(run.RunID, d))
		}
		if _, err := tx.NamedExecContext(ctx, insertDemographic, demographic); err != nil {
			return fmt.Errorf("failed to insert demographic records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.RunID, err)
	}
	return nil
}

// GetRun returns the run header.
func (s *RunStore) GetRun(ctx context.Context, runID string) (*RunRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var run RunRow
	err := s.db.GetContext(ctx, &run, `
		SELECT run_id, mode, label, seed, simulations, start_year, end_year, created_at
		FROM projection_runs
		WHERE run_id = $1`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var runs []RunRow
	err := s.db.SelectContext(ctx, &runs, `
		SELECT run_id, mode, label, seed, simulations, start_year, end_year, created_at
		FROM projection_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// LoadFinancial reads the records of a run ordered by simulation and year.
func (s *RunStore) LoadFinancial(ctx context.Context, runID string) ([]domain.FinancialRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []FinancialRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT run_id, simulation, year, nominal_revenue, real_revenue,
			nominal_expenditure, real_expenditure, nominal_balance, real_balance,
			nominal_reserve_fund, real_reserve_fund, fund_ratio, nominal_gdp, real_gdp, portfolio_return
		FROM financial_records
		WHERE run_id = $1
		ORDER BY simulation, year`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load financial records for %s: %w", runID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	records := make([]domain.FinancialRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.Record()
		if err != nil {
			return nil, fmt.Errorf("run %s year %d: %w", runID, r.Year, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// chunks splits [0, n) into half-open [lo, hi) ranges of at most size.
func chunks(n, size int) [][2]int {
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}
