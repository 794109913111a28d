package main

import (
	"fmt"

	"github.com/npsmodel/projection/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func defaultsCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print or write the built-in configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfiguration()
			if path != "" {
				if err := config.NewInputParser().SaveConfiguration(cfg, path); err != nil {
					return err
				}
				a.log.Info().Str("path", path).Msg("default configuration written")
				return nil
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "write", "w", "", "write the configuration to this file instead of stdout")
	return cmd
}
