package main

import (
	"fmt"
	"strings"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/output"
	"github.com/spf13/cobra"
)

func runCmd(a *app) *cobra.Command {
	var (
		format string
		label  string
		source string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the deterministic projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Finance.ReturnSource = source
			}
			cfg.Stochastic.Enabled = false
			if err := config.NewInputParser().ValidateConfiguration(cfg); err != nil {
				return err
			}
			engine, err := a.newEngine(cfg)
			if err != nil {
				return err
			}
			result, err := engine.RunDeterministic(cmd.Context())
			if err != nil {
				return err
			}
			result.Label = label
			result.Assumptions = output.GenerateAssumptions(cfg)

			summary, err := calculation.SummarizeRun(result.Financial)
			if err != nil {
				return err
			}
			a.log.Info().
				Str("run_id", result.RunID).
				Str("max_reserve_trillion", summary.MaxReserve.StringFixed(1)).
				Int("max_reserve_year", summary.MaxReserveYear).
				Interface("depletion_year", summary.DepletionYear).
				Msg("deterministic projection complete")

			if a.outputDir == "" {
				f := output.GetFormatterByName(format)
				if f == nil || strings.EqualFold(format, "all") {
					return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
				}
				data, err := f.Format(result)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			} else {
				paths, err := output.GenerateReport(result, format, a.outputDir)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
				}
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
				if err := s.SaveProjection(cmd.Context(), result); err != nil {
					return err
				}
				a.log.Info().Str("run_id", result.RunID).Msg("projection stored")
			}
			return a.finish()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console", "report format ("+strings.Join(output.AvailableFormatterNames(), ", ")+", all)")
	cmd.Flags().StringVar(&label, "label", "", "scenario label attached to the result")
	cmd.Flags().StringVar(&source, "return-source", "", "override the deterministic return source (portfolio or curve)")
	return cmd
}
