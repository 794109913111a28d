package output

import (
	"bytes"
	"fmt"

	"github.com/npsmodel/projection/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	h, err := AnalyzeProjection(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "PENSION FUND PROJECTION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Horizon: %d-%d\n", h.StartYear, h.EndYear)
	fmt.Fprintf(&buf, "Peak reserve: %s조원 (%d)\n", h.Summary.MaxReserve.StringFixed(1), h.Summary.MaxReserveYear)
	fmt.Fprintf(&buf, "First deficit: %s\n", optionalYear(h.Summary.FirstDeficitYear))
	fmt.Fprintf(&buf, "Depletion: %s\n", optionalYear(h.Summary.DepletionYear))
	fmt.Fprintf(&buf, "Peak elderly dependency: %.1f (%d)\n", h.PeakDependency, h.PeakDependencyYear)
	fmt.Fprintln(&buf)
	for i, rec := range result.Financial {
		if i%10 != 0 && i != len(result.Financial)-1 {
			continue
		}
		fmt.Fprintf(&buf, "%d: reserve=%s balance=%s\n", rec.Year, FormatTrillionWon(rec.NominalReserveFund), FormatTrillionWon(rec.NominalBalance))
	}
	return buf.Bytes(), nil
}
