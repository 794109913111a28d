package main

import (
	"fmt"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/output"
	"github.com/spf13/cobra"
)

type rateRange struct {
	from, to, step float64
}

func (r rateRange) steps(name string) ([]float64, error) {
	rates := calculation.RateSteps(r.from, r.to, r.step)
	if len(rates) == 0 {
		return nil, fmt.Errorf("%s range %v..%v step %v is empty", name, r.from, r.to, r.step)
	}
	return rates, nil
}

func sweepCmd(a *app) *cobra.Command {
	var (
		contribution rateRange
		replacement  rateRange
		workers      int
	)
	def := calculation.DefaultSweepGrid()
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Project every contribution/replacement rate combination on a grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			var grid calculation.SweepGrid
			if grid.ContributionRates, err = contribution.steps("contribution"); err != nil {
				return err
			}
			if grid.ReplacementRates, err = replacement.steps("replacement"); err != nil {
				return err
			}
			points, err := calculation.SweepPolicies(cmd.Context(), cfg, grid, workers, a.logger())
			if err != nil {
				return err
			}
			a.log.Info().Int("points", len(points)).Msg("policy sweep complete")

			if a.outputDir == "" {
				data, err := output.FormatSweepCSV(points)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			} else {
				path, err := output.WriteSweepCSV(points, a.outputDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return a.finish()
		},
	}
	f := cmd.Flags()
	f.Float64Var(&contribution.from, "contribution-from", def.ContributionRates[0], "first contribution rate")
	f.Float64Var(&contribution.to, "contribution-to", def.ContributionRates[len(def.ContributionRates)-1], "last contribution rate")
	f.Float64Var(&contribution.step, "contribution-step", 0.01, "contribution rate step")
	f.Float64Var(&replacement.from, "replacement-from", def.ReplacementRates[0], "first income replacement rate")
	f.Float64Var(&replacement.to, "replacement-to", def.ReplacementRates[len(def.ReplacementRates)-1], "last income replacement rate")
	f.Float64Var(&replacement.step, "replacement-step", 0.01, "income replacement rate step")
	f.IntVar(&workers, "workers", 0, "parallel workers (GOMAXPROCS when 0)")
	return cmd
}
