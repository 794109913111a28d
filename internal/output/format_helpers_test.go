//go:build unit

package output

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatTrillionWon(t *testing.T) {
	v := decimal.NewFromInt(182_304_000_000)
	got := FormatTrillionWon(v)
	want := "1,823.0조원"
	if got != want {
		t.Errorf("FormatTrillionWon(%v) = %q, want %q", v, got, want)
	}
}

func TestFormatPercentage(t *testing.T) {
	v := decimal.NewFromFloat(12.3456)
	got := FormatPercentage(v)
	want := "12.35%"
	if got != want {
		t.Errorf("FormatPercentage(%v) = %q, want %q", v, got, want)
	}
}

func TestFormatPersons(t *testing.T) {
	got := FormatPersons(51_560_000)
	want := "5,156.0만명"
	if got != want {
		t.Errorf("FormatPersons = %q, want %q", got, want)
	}
}

func TestOptionalYear(t *testing.T) {
	y := 2054
	if got := optionalYear(&y); got != "2054" {
		t.Errorf("optionalYear(2054) = %q", got)
	}
	if got := optionalYear(nil); got != "-" {
		t.Errorf("optionalYear(nil) = %q", got)
	}
}
