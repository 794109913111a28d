package main

import (
	"context"
	"fmt"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/npsmodel/projection/internal/metrics"
	"github.com/npsmodel/projection/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries the persistent flags and the ambient services shared by every command.
type app struct {
	configPath  string
	logLevel    string
	outputDir   string
	metricsPath string
	databaseURL string

	log     zerolog.Logger
	metrics *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "npsproj",
		Short:         "National pension fund actuarial projection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(a.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
			}
			a.log = log.Logger.Level(level)
			a.metrics = metrics.New()
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file (defaults are used when empty)")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVarP(&a.outputDir, "output-dir", "o", "", "directory for report files (stdout when empty)")
	pf.StringVar(&a.metricsPath, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	pf.StringVar(&a.databaseURL, "database-url", "", "PostgreSQL DSN for storing runs")

	root.AddCommand(
		runCmd(a),
		stochasticCmd(a),
		sensitivityCmd(a),
		sweepCmd(a),
		validateCmd(a),
		defaultsCmd(a),
		runsCmd(a),
	)
	return root
}

// loadConfig reads --config on top of the defaults, or returns the defaults.
func (a *app) loadConfig() (*domain.Configuration, error) {
	if a.configPath == "" {
		cfg := config.DefaultConfiguration()
		if err := config.NewInputParser().ValidateConfiguration(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg, err := config.NewInputParser().LoadFromFile(a.configPath)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("path", a.configPath).Msg("configuration loaded")
	return cfg, nil
}

func (a *app) logger() calculation.Logger {
	return calculation.NewZerologLogger(a.log)
}

func (a *app) newEngine(cfg *domain.Configuration) (*calculation.ProjectionEngine, error) {
	engine, err := calculation.NewProjectionEngineWithLogger(cfg, a.logger())
	if err != nil {
		return nil, err
	}
	engine.Metrics = a.metrics
	return engine, nil
}

// openStore returns nil when no database is configured.
func (a *app) openStore(ctx context.Context) (*store.RunStore, error) {
	if a.databaseURL == "" {
		return nil, nil
	}
	cfg := store.DefaultConfig()
	cfg.DSN = a.databaseURL
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// finish flushes the metrics textfile when requested.
func (a *app) finish() error {
	if a.metricsPath == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.metricsPath); err != nil {
		return err
	}
	a.log.Info().Str("path", a.metricsPath).Msg("metrics written")
	return nil
}
