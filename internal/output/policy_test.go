package output

import (
	"strings"
	"testing"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func TestFormatSweepCSV(t *testing.T) {
	points := []calculation.SweepPoint{
		{
			ContributionRate:  0.09,
			IncomeReplacement: 0.40,
			Summary: calculation.RunSummary{
				MaxReserve:       decimal.RequireFromString("1823.0"),
				MaxReserveYear:   2038,
				FirstDeficitYear: intPtr(2039),
				DepletionYear:    intPtr(2054),
			},
		},
		{
			ContributionRate:  0.15,
			IncomeReplacement: 0.40,
			Summary: calculation.RunSummary{
				MaxReserve:     decimal.RequireFromString("5120.4"),
				MaxReserveYear: 2093,
			},
		},
	}
	out, err := FormatSweepCSV(points)
	if err != nil {
		t.Fatalf("FormatSweepCSV error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	want := []string{
		"contribution_rate,income_replacement,max_reserve,max_reserve_year,first_deficit_year,depletion_year",
		"0.0900,0.4000,1823.0,2038,2039,2054",
		"0.1500,0.4000,5120.4,2093,-,-",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("sweep CSV =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}

	path, err := WriteSweepCSV(points, t.TempDir())
	if err != nil {
		t.Fatalf("WriteSweepCSV error: %v", err)
	}
	if !strings.HasSuffix(path, "policy_sweep.csv") {
		t.Fatalf("unexpected path %s", path)
	}
}

func TestFormatSweepCSV_Empty(t *testing.T) {
	if _, err := FormatSweepCSV(nil); err == nil {
		t.Fatal("expected an error for an empty sweep")
	}
}

func TestFormatSensitivity(t *testing.T) {
	shift := 7.5
	res := &calculation.SensitivityResult{
		ContributionRate:  0.09,
		IncomeReplacement: 0.40,
		Delta:             0.01,
		Base:              calculation.RunSummary{MaxReserve: decimal.RequireFromString("1823.0"), MaxReserveYear: 2038, DepletionYear: intPtr(2054)},
		Contribution:      calculation.Elasticity{MaxReserve: decimal.RequireFromString("310.25"), MaxReserveYear: 2, DepletionYear: &shift},
		Replacement:       calculation.Elasticity{MaxReserve: decimal.RequireFromString("-40")},
	}
	content := string(FormatSensitivity(res))
	for _, want := range []string{
		"Base: contribution 9.00%, replacement 40.00%, delta ±1.00%",
		"contribution +delta",
		"replacement -delta",
		"contribution  peak 310.25조원, peak year +2.0, first deficit n/a, depletion +7.5 years",
		"replacement   peak -40.00조원",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("sensitivity output missing %q:\n%s", want, content)
		}
	}

	js, err := FormatSensitivityJSON(res)
	if err != nil {
		t.Fatalf("FormatSensitivityJSON error: %v", err)
	}
	if !strings.Contains(string(js), `"contribution_elasticity"`) {
		t.Fatalf("JSON missing elasticity: %s", js)
	}
}
