package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/npsmodel/projection/internal/output"
	"github.com/npsmodel/projection/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// runReader is the read side of store.RunStore.
type runReader interface {
	GetRun(ctx context.Context, runID string) (*store.RunRow, error)
	ListRuns(ctx context.Context, limit int) ([]store.RunRow, error)
	LoadFinancial(ctx context.Context, runID string) ([]domain.FinancialRecord, error)
}

func runsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect projections stored with --database-url",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return listRuns(cmd.Context(), s, cmd.OutOrStdout(), limit)
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")

	var format string
	show := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Summarize a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			return showRun(cmd.Context(), s, cmd.OutOrStdout(), args[0], format)
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "", "also render the records of a deterministic run in this format")

	cmd.AddCommand(list, show)
	return cmd
}

func (a *app) requireStore(ctx context.Context) (*store.RunStore, error) {
	if a.databaseURL == "" {
		return nil, errors.New("--database-url is required")
	}
	return a.openStore(ctx)
}

func listRuns(ctx context.Context, r runReader, w io.Writer, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	runs, err := r.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no stored runs")
		return nil
	}
	fmt.Fprintf(w, "%-38s %-13s %-9s %6s %20s  %s\n", "RUN", "MODE", "YEARS", "PATHS", "CREATED", "LABEL")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, run := range runs {
		fmt.Fprintf(w, "%-38s %-13s %d-%d %6d %20s  %s\n", run.RunID, run.Mode,
			run.StartYear, run.EndYear, run.Simulations,
			run.CreatedAt.UTC().Format("2006-01-02 15:04:05"), run.Label)
	}
	return nil
}

func showRun(ctx context.Context, r runReader, w io.Writer, runID, format string) error {
	run, err := r.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	records, err := r.LoadFinancial(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run: %s (%s, %d-%d)\n", run.RunID, run.Mode, run.StartYear, run.EndYear)
	if run.Label != "" {
		fmt.Fprintf(w, "Scenario: %s\n", run.Label)
	}

	if run.Mode == store.ModeStochastic {
		ensemble := &domain.EnsembleResult{RunID: run.RunID, Seed: run.Seed.Int64, Paths: splitPaths(records)}
		ensemble.Simulations = len(ensemble.Paths)
		summary, err := calculation.SummarizeEnsemble(ensemble)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Simulations: %d (seed %d)\n", summary.Simulations, run.Seed.Int64)
		fmt.Fprintf(w, "Depletion probability: %s\n", output.FormatPercentage(summary.DepletionProbability.Mul(decimal.NewFromInt(100))))
		fmt.Fprintf(w, "Median final reserve: %s\n", output.FormatTrillionWon(summary.MedianFinalReserve))
		return nil
	}

	summary, err := calculation.SummarizeRun(records)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Peak reserve: %s조원 (%d)\n", summary.MaxReserve.StringFixed(1), summary.MaxReserveYear)
	fmt.Fprintf(w, "First deficit: %s\n", yearOrNone(summary.FirstDeficitYear))
	fmt.Fprintf(w, "Depletion: %s\n", yearOrNone(summary.DepletionYear))
	if format == "" {
		return nil
	}
	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
	}
	data, err := f.Format(&domain.ProjectionResult{RunID: run.RunID, Label: run.Label, Financial: records})
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	_, err = w.Write(data)
	return err
}

// splitPaths groups records ordered by simulation and year into paths.
func splitPaths(records []domain.FinancialRecord) [][]domain.FinancialRecord {
	var paths [][]domain.FinancialRecord
	for i, r := range records {
		if i == 0 || r.Simulation != records[i-1].Simulation {
			paths = append(paths, nil)
		}
		paths[len(paths)-1] = append(paths[len(paths)-1], r)
	}
	return paths
}

func yearOrNone(y *int) string {
	if y == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *y)
}
