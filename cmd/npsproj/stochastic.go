package main

import (
	"fmt"

	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func stochasticCmd(a *app) *cobra.Command {
	var (
		simulations int
		seed        int64
		workers     int
		label       string
	)
	cmd := &cobra.Command{
		Use:   "stochastic",
		Short: "Run the Monte Carlo ensemble over correlated investment returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			cfg.Stochastic.Enabled = true
			flags := cmd.Flags()
			if flags.Changed("simulations") {
				cfg.Stochastic.Simulations = simulations
			}
			if flags.Changed("seed") {
				cfg.Stochastic.Seed = seed
			}
			if flags.Changed("workers") {
				cfg.Stochastic.Workers = workers
			}
			if err := config.NewInputParser().ValidateConfiguration(cfg); err != nil {
				return err
			}
			engine, err := a.newEngine(cfg)
			if err != nil {
				return err
			}
			result, err := engine.RunStochastic(cmd.Context())
			if err != nil {
				return err
			}
			result.Label = label

			report, err := output.NewEnsembleCSVReport(result)
			if err != nil {
				return err
			}
			s := report.Summary
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Simulations: %d (seed %d)\n", s.Simulations, result.Seed)
			fmt.Fprintf(out, "Depletion probability: %s\n", output.FormatPercentage(s.DepletionProbability.Mul(decimal.NewFromInt(100))))
			if s.MedianDepletionYear != 0 {
				fmt.Fprintf(out, "Depletion year: median %d, 5th pct %d, 95th pct %d\n", s.MedianDepletionYear, s.P5DepletionYear, s.P95DepletionYear)
			}
			fmt.Fprintf(out, "Final reserve: mean %s, median %s, bottom 5%% mean %s\n",
				output.FormatTrillionWon(s.MeanFinalReserve), output.FormatTrillionWon(s.MedianFinalReserve), output.FormatTrillionWon(s.Bottom5MeanReserve))

			if a.outputDir != "" {
				paths, err := report.GenerateAllCSVReports(a.outputDir)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(out, "wrote %s\n", p)
				}
			}

			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
				if err := st.SaveEnsemble(cmd.Context(), result); err != nil {
					return err
				}
				a.log.Info().Str("run_id", result.RunID).Msg("ensemble stored")
			}
			a.log.Info().
				Str("run_id", result.RunID).
				Int64("seed", result.Seed).
				Str("depletion_probability", s.DepletionProbability.StringFixed(4)).
				Msg("stochastic projection complete")
			return a.finish()
		},
	}
	cmd.Flags().IntVarP(&simulations, "simulations", "n", 0, "number of simulated paths (configuration value when unset)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed; 0 draws a fresh one")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (GOMAXPROCS when 0)")
	cmd.Flags().StringVar(&label, "label", "", "scenario label attached to the result")
	return cmd
}
