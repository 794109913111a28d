package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/output"
	"github.com/spf13/cobra"
)

func sensitivityCmd(a *app) *cobra.Command {
	var (
		delta  float64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Shift the contribution and replacement rates by ±delta and compare milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			if delta <= 0 || delta >= 1 {
				return fmt.Errorf("delta must be in (0, 1), got %v", delta)
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			res, err := calculation.AnalyzeSensitivity(cmd.Context(), cfg, delta, a.logger())
			if err != nil {
				return err
			}

			data := output.FormatSensitivity(res)
			name := "sensitivity.txt"
			if asJSON {
				if data, err = output.FormatSensitivityJSON(res); err != nil {
					return err
				}
				name = "sensitivity.json"
			}
			if a.outputDir == "" {
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			} else {
				if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				path := filepath.Join(a.outputDir, name)
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			a.log.Info().Float64("delta", delta).Msg("sensitivity analysis complete")
			return a.finish()
		},
	}
	cmd.Flags().Float64Var(&delta, "delta", 0.01, "absolute shift applied to each rate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of the text report")
	return cmd
}
