package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
)

// EnsembleCSVReport generates CSV exports for a Monte Carlo ensemble
type EnsembleCSVReport struct {
	Result  *domain.EnsembleResult
	Summary *calculation.EnsembleSummary
}

// NewEnsembleCSVReport summarizes the ensemble once for all exports.
func NewEnsembleCSVReport(result *domain.EnsembleResult) (*EnsembleCSVReport, error) {
	summary, err := calculation.SummarizeEnsemble(result)
	if err != nil {
		return nil, err
	}
	return &EnsembleCSVReport{Result: result, Summary: summary}, nil
}

// GenerateSummaryCSV creates a summary CSV with aggregate statistics
func (m *EnsembleCSVReport) GenerateSummaryCSV(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value", "Description"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	s := m.Summary
	summaryData := [][]string{
		{"Simulations", strconv.Itoa(s.Simulations), "Number of simulated return paths"},
		{"Seed", strconv.FormatInt(m.Result.Seed, 10), "Seed that reproduces this ensemble"},
		{"Depletion Probability", FormatPercentage(s.DepletionProbability.Mul(decimal.NewFromInt(100))), "Share of paths whose reserve is exhausted at some point"},
		{"Median Depletion Year", yearOrDash(s.MedianDepletionYear), "Median over depleting paths"},
		{"5th Percentile Depletion Year", yearOrDash(s.P5DepletionYear), "Earliest 5% of depleting paths"},
		{"95th Percentile Depletion Year", yearOrDash(s.P95DepletionYear), "Latest 5% of depleting paths"},
		{"Mean Final Reserve", FormatTrillionWon(s.MeanFinalReserve), "Average reserve in the last projected year"},
		{"Median Final Reserve", FormatTrillionWon(s.MedianFinalReserve), "Median reserve in the last projected year"},
		{"Bottom 5% Mean Final Reserve", FormatTrillionWon(s.Bottom5MeanReserve), "Average of the worst 5% of final reserves"},
	}
	for _, row := range summaryData {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write data row: %w", err)
		}
	}
	return writer.Error()
}

type pathRow struct {
	Simulation    int    `csv:"simulation"`
	Depleted      bool   `csv:"depleted"`
	DepletionYear string `csv:"depletion_year"`
	PeakReserve   string `csv:"peak_reserve"`
	FinalReserve  string `csv:"final_reserve"`
	MeanReturn    string `csv:"mean_return"`
	FirstDeficit  string `csv:"first_deficit_year"`
}

// GenerateDetailedCSV creates one row per simulated path
func (m *EnsembleCSVReport) GenerateDetailedCSV(outputPath string) error {
	rows := make([]pathRow, 0, len(m.Result.Paths))
	for sim, path := range m.Result.Paths {
		if len(path) == 0 {
			continue
		}
		run, err := calculation.SummarizeRun(path)
		if err != nil {
			return err
		}
		var sum float64
		for _, r := range path {
			sum += r.PortfolioReturn
		}
		year := m.Summary.DepletionYears[sim]
		rows = append(rows, pathRow{
			Simulation:    sim,
			Depleted:      year != 0,
			DepletionYear: yearOrDash(year),
			PeakReserve:   run.MaxReserve.StringFixed(1),
			FinalReserve:  trillions(path[len(path)-1].NominalReserveFund),
			MeanReturn:    fmt.Sprintf("%.4f", sum/float64(len(path))),
			FirstDeficit:  optionalYear(run.FirstDeficitYear),
		})
	}
	return writeRows(outputPath, &rows)
}

type yearRow struct {
	Year          int    `csv:"year"`
	ReserveP5     string `csv:"reserve_p5"`
	ReserveMedian string `csv:"reserve_median"`
	ReserveMean   string `csv:"reserve_mean"`
	ReserveP95    string `csv:"reserve_p95"`
	BalanceP5     string `csv:"balance_p5"`
	BalanceMedian string `csv:"balance_median"`
	BalanceP95    string `csv:"balance_p95"`
	DepletedShare string `csv:"depleted_share"`
}

// GeneratePercentileCSV creates the per-year cross-path distribution
func (m *EnsembleCSVReport) GeneratePercentileCSV(outputPath string) error {
	rows := make([]yearRow, 0, len(m.Summary.Years))
	for _, y := range m.Summary.Years {
		rows = append(rows, yearRow{
			Year:          y.Year,
			ReserveP5:     trillions(y.ReserveP5),
			ReserveMedian: trillions(y.ReserveMedian),
			ReserveMean:   trillions(y.ReserveMean),
			ReserveP95:    trillions(y.ReserveP95),
			BalanceP5:     trillions(y.BalanceP5),
			BalanceMedian: trillions(y.BalanceMedian),
			BalanceP95:    trillions(y.BalanceP95),
			DepletedShare: y.DepletedShare.StringFixed(4),
		})
	}
	return writeRows(outputPath, &rows)
}

// GenerateAllCSVReports creates all CSV reports in a single directory
func (m *EnsembleCSVReport) GenerateAllCSVReports(outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	reports := []struct {
		name string
		gen  func(string) error
	}{
		{"monte_carlo_summary.csv", m.GenerateSummaryCSV},
		{"monte_carlo_paths.csv", m.GenerateDetailedCSV},
		{"monte_carlo_percentiles.csv", m.GeneratePercentileCSV},
	}
	paths := make([]string, 0, len(reports))
	for _, r := range reports {
		p := filepath.Join(outputDir, r.name)
		if err := r.gen(p); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", r.name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeRows(outputPath string, rows interface{}) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func yearOrDash(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}
