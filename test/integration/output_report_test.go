package integration

import (
	"os"
	"path/filepath"
	"testing"

	stddec "github.com/shopspring/decimal"

	"github.com/npsmodel/projection/internal/config"
	"github.com/npsmodel/projection/internal/output"
)

func TestFormatters(t *testing.T) {
	// 만원 in, 조원 out
	d1 := stddec.NewFromInt(91_500_000_000)
	if got := output.FormatTrillionWon(d1); got != "915.0조원" {
		t.Fatalf("FormatTrillionWon got %s", got)
	}
	// FormatPercentage expects the value already in percentage units (not a 0-1 fraction)
	d2 := stddec.NewFromFloat(12.34)
	if got := output.FormatPercentage(d2); got != "12.34%" {
		t.Fatalf("FormatPercentage got %s", got)
	}
	if got := output.FormatRate(0.04879); got != "4.88%" {
		t.Fatalf("FormatRate got %s", got)
	}
}

func TestSaveConfiguration_WritesFile(t *testing.T) {
	parser := config.NewInputParser()
	out := filepath.Join(t.TempDir(), "config.yaml")
	if err := parser.SaveConfiguration(config.DefaultConfiguration(), out); err != nil {
		t.Fatalf("SaveConfiguration error: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("expected file exists, err: %v", err)
	}
	if fi.Size() == 0 {
		t.Fatalf("expected non-empty file")
	}
	if _, err := parser.LoadFromFile(out); err != nil {
		t.Fatalf("saved configuration does not load back: %v", err)
	}
}
