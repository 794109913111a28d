package calculation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// uniformTable has perAge persons (split evenly by sex) at every age 0..maxAge.
func uniformTable(maxAge int, perAge float64) domain.PopulationTable {
	table := make(domain.PopulationTable, maxAge+1)
	for age := range table {
		table[age] = domain.Cohort{Age: age, Male: perAge / 2, Female: perAge / 2, Total: perAge}
	}
	return table
}

func testConfig(t *testing.T) *domain.Configuration {
	t.Helper()
	cfg := config.DefaultConfiguration()
	require.NoError(t, config.NewInputParser().ValidateConfiguration(cfg))
	return cfg
}

func newTestEngine(t *testing.T, cfg *domain.Configuration) *ProjectionEngine {
	t.Helper()
	engine, err := NewProjectionEngine(cfg)
	require.NoError(t, err)
	return engine
}

// recordingLogger keeps formatted messages per level.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
}

func (l *recordingLogger) Debugf(string, ...any) {}
func (l *recordingLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Errorf(string, ...any) {}
