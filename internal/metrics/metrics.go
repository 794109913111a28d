package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run modes used as the "mode" label.
const (
	ModeDeterministic = "deterministic"
	ModeStochastic    = "stochastic"
)

// Metrics provides observability for projection runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	SimulationPaths    prometheus.Counter
	TrajectoryCacheHit prometheus.Counter
	DepletedPathsRatio prometheus.Gauge
}

// New registers the projection metrics on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the projection metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nps_projection_runs_total",
			Help: "Total number of completed projection runs",
		}, []string{"mode"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nps_projection_duration_seconds",
			Help:    "Wall time of projection runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
		SimulationPaths: factory.NewCounter(prometheus.CounterOpts{
			Name: "nps_simulation_paths_total",
			Help: "Total number of Monte Carlo paths simulated",
		}),
		TrajectoryCacheHit: factory.NewCounter(prometheus.CounterOpts{
			Name: "nps_trajectory_cache_hits_total",
			Help: "Stochastic runs served from the cached demographic/macro trajectory",
		}),
		DepletedPathsRatio: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nps_depleted_paths_ratio",
			Help: "Share of paths of the last ensemble whose fund was depleted at some point",
		}),
	}
}

// ObserveRun records a completed run of the given mode.
func (m *Metrics) ObserveRun(mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(mode).Inc()
	m.RunDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// AddPaths counts simulated paths.
func (m *Metrics) AddPaths(n int) {
	if m == nil {
		return
	}
	m.SimulationPaths.Add(float64(n))
}

// IncrementCacheHit records a trajectory cache hit.
func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.TrajectoryCacheHit.Inc()
}

// SetDepletedRatio records the depletion share of the last ensemble.
func (m *Metrics) SetDepletedRatio(ratio float64) {
	if m == nil {
		return
	}
	m.DepletedPathsRatio.Set(ratio)
}

// Gatherer exposes the underlying registry. A nil *Metrics gathers nothing.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
