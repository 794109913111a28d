package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration without projecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			// engine construction catches table errors the parser cannot see
			if _, err := a.newEngine(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid (%d-%d)\n", cfg.Horizon.StartYear, cfg.Horizon.EndYear)
			return nil
		},
	}
}
