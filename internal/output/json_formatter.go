package output

import (
	"encoding/json"
	"fmt"

	"github.com/npsmodel/projection/internal/calculation"
	"github.com/npsmodel/projection/internal/domain"
)

// jsonReport wraps the projection with its headline milestones.
type jsonReport struct {
	Summary calculation.RunSummary `json:"summary"`
	*domain.ProjectionResult
}

// JSONFormatter serializes the projection as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	if result == nil || len(result.Financial) == 0 {
		return nil, fmt.Errorf("projection has no financial records")
	}
	summary, err := calculation.SummarizeRun(result.Financial)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(jsonReport{Summary: summary, ProjectionResult: result}, "", "  ")
}
