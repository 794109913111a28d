package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/npsmodel/projection/internal/calculation"
)

type sweepRow struct {
	ContributionRate  string `csv:"contribution_rate"`
	IncomeReplacement string `csv:"income_replacement"`
	MaxReserve        string `csv:"max_reserve"`
	MaxReserveYear    int    `csv:"max_reserve_year"`
	FirstDeficitYear  string `csv:"first_deficit_year"`
	DepletionYear     string `csv:"depletion_year"`
}

// FormatSweepCSV renders a policy sweep, one row per rate combination.
func FormatSweepCSV(points []calculation.SweepPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("sweep has no points")
	}
	rows := make([]sweepRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, sweepRow{
			ContributionRate:  fmt.Sprintf("%.4f", p.ContributionRate),
			IncomeReplacement: fmt.Sprintf("%.4f", p.IncomeReplacement),
			MaxReserve:        p.Summary.MaxReserve.StringFixed(1),
			MaxReserveYear:    p.Summary.MaxReserveYear,
			FirstDeficitYear:  optionalYear(p.Summary.FirstDeficitYear),
			DepletionYear:     optionalYear(p.Summary.DepletionYear),
		})
	}
	return gocsv.MarshalBytes(&rows)
}

// WriteSweepCSV writes the sweep to policy_sweep.csv in dir.
func WriteSweepCSV(points []calculation.SweepPoint, dir string) (string, error) {
	data, err := FormatSweepCSV(points)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, "policy_sweep.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// FormatSensitivity renders the ±delta runs and their central differences.
func FormatSensitivity(res *calculation.SensitivityResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "POLICY SENSITIVITY")
	fmt.Fprintln(&buf, "==================")
	fmt.Fprintf(&buf, "Base: contribution %s, replacement %s, delta ±%s\n\n",
		FormatRate(res.ContributionRate), FormatRate(res.IncomeReplacement), FormatRate(res.Delta))
	fmt.Fprintf(&buf, "%-22s %14s %10s %14s %10s\n", "RUN", "PEAK (조원)", "PEAK YEAR", "FIRST DEFICIT", "DEPLETION")
	fmt.Fprintln(&buf, strings.Repeat("-", 74))
	runs := []struct {
		label string
		s     calculation.RunSummary
	}{
		{"base", res.Base},
		{"contribution +delta", res.ContributionUp},
		{"contribution -delta", res.ContributionDown},
		{"replacement +delta", res.ReplacementUp},
		{"replacement -delta", res.ReplacementDown},
	}
	for _, r := range runs {
		fmt.Fprintf(&buf, "%-22s %14s %10d %14s %10s\n", r.label,
			r.s.MaxReserve.StringFixed(1), r.s.MaxReserveYear,
			optionalYear(r.s.FirstDeficitYear), optionalYear(r.s.DepletionYear))
	}
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "CENTRAL DIFFERENCES:")
	writeElasticity(&buf, "contribution", res.Contribution)
	writeElasticity(&buf, "replacement", res.Replacement)
	return buf.Bytes()
}

func writeElasticity(buf *bytes.Buffer, name string, e calculation.Elasticity) {
	fmt.Fprintf(buf, "  %-13s peak %s조원, peak year %+.1f, first deficit %s, depletion %s\n",
		name, e.MaxReserve.StringFixed(2), e.MaxReserveYear,
		optionalShift(e.FirstDeficitYear), optionalShift(e.DepletionYear))
}

func optionalShift(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f years", *v)
}

// FormatSensitivityJSON serializes the sensitivity result.
func FormatSensitivityJSON(res *calculation.SensitivityResult) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}
