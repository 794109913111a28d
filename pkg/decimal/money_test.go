package decimal

import (
	"testing"

	stddec "github.com/shopspring/decimal"
)

func TestConstructors(t *testing.T) {
	m := NewMoney(12.6)
	if m.String() != "13" { // rounded for display
		t.Fatalf("NewMoney display mismatch: got %s", m.String())
	}

	d := stddec.NewFromFloat(10.125)
	m2 := NewMoneyFromDecimal(d)
	if !m2.Decimal.Equal(d) {
		t.Fatalf("NewMoneyFromDecimal mismatch: got %s want %s", m2.Decimal, d)
	}

	m3, err := NewMoneyFromString("91500000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m3.Equal(FromTrillionWon(915)) {
		t.Fatalf("FromTrillionWon(915) = %s, want %s", FromTrillionWon(915), m3)
	}

	if _, err := NewMoneyFromString("not-a-number"); err == nil {
		t.Fatalf("expected error for invalid string")
	}
}

func TestUnitConversions(t *testing.T) {
	m := NewMoney(182_300_000_000)
	if got := m.Trillions().StringFixed(1); got != "1823.0" {
		t.Fatalf("Trillions got %s", got)
	}
	if got := NewMoney(25_000).HundredMillions().String(); got != "2.5" {
		t.Fatalf("HundredMillions got %s", got)
	}

	wage := NewMoney(385)
	if got := wage.Annual().String(); got != "4620" {
		t.Fatalf("Annual got %s", got)
	}
	if got := wage.Annual().Monthly().String(); got != "385" {
		t.Fatalf("Monthly after Annual got %s", got)
	}
}

func TestArithmetic(t *testing.T) {
	income := NewMoney(1000)
	if got := income.ApplyRate(stddec.NewFromFloat(0.09)).String(); got != "90" {
		t.Fatalf("ApplyRate got %s want 90", got)
	}

	a := NewMoney(10.5)
	b := NewMoney(5.25)
	if got := a.Add(b).Decimal.String(); got != "15.75" {
		t.Fatalf("Add got %s", got)
	}
	if got := a.Sub(b).Decimal.String(); got != "5.25" {
		t.Fatalf("Sub got %s", got)
	}
	if got := a.Mul(stddec.NewFromInt(2)).String(); got != "21" {
		t.Fatalf("Mul got %s", got)
	}
	if got := a.Div(stddec.NewFromInt(2)).Decimal.String(); got != "5.25" {
		t.Fatalf("Div got %s", got)
	}
	if !a.Div(stddec.Zero).IsZero() {
		t.Fatalf("Div by zero should yield zero")
	}
	if got := NewMoney(2.5).Round().String(); got != "3" {
		t.Fatalf("Round got %s", got)
	}
}

func TestComparisonsAndUtils(t *testing.T) {
	a := NewMoney(10)
	b := NewMoney(20)

	if !b.GreaterThan(a) || a.GreaterThan(b) {
		t.Fatalf("GreaterThan logic failure")
	}
	if !a.LessThan(b) || b.LessThan(a) {
		t.Fatalf("LessThan logic failure")
	}
	if !a.Equal(NewMoney(10)) || b.Equal(a) {
		t.Fatalf("Equal logic failure")
	}
	if !Zero().IsZero() {
		t.Fatalf("Zero should be zero")
	}
	if !Min(a, b).Equal(a) {
		t.Fatalf("Min failed")
	}
	if !Max(a, b).Equal(b) {
		t.Fatalf("Max failed")
	}
}

func TestStringAndFormat(t *testing.T) {
	cases := []struct {
		in        float64
		format    string
		trillions string
	}{
		{1234.4, "1,234만원", "0.0조원"},
		{385, "385만원", "0.0조원"},
		{91_500_000_000, "91,500,000,000만원", "915.0조원"},
		{182_304_000_000, "182,304,000,000만원", "1,823.0조원"},
		{-150_000_000, "-150,000,000만원", "-1.5조원"},
	}
	for _, c := range cases {
		m := NewMoney(c.in)
		if got := m.Format(); got != c.format {
			t.Errorf("Format(%v) = %q, want %q", c.in, got, c.format)
		}
		if got := m.FormatTrillion(); got != c.trillions {
			t.Errorf("FormatTrillion(%v) = %q, want %q", c.in, got, c.trillions)
		}
	}
}

func TestGroupDigits(t *testing.T) {
	cases := map[string]string{
		"0":          "0",
		"999":        "999",
		"1000":       "1,000",
		"123456":     "123,456",
		"1234567.89": "1,234,567.89",
		"-1000.5":    "-1,000.5",
	}
	for in, want := range cases {
		if got := GroupDigits(in); got != want {
			t.Errorf("GroupDigits(%q) = %q, want %q", in, got, want)
		}
	}
}
