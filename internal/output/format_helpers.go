package output

import (
	"fmt"

	money "github.com/npsmodel/projection/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatTrillionWon formats an amount in 만원 as 조원 with one decimal.
func FormatTrillionWon(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).FormatTrillion()
}

// FormatManwon formats an amount in 만원 with thousands separators.
func FormatManwon(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Format()
}

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRate formats a fractional rate (0.0488) as a percentage ("4.88%").
func FormatRate(rate float64) string { return fmt.Sprintf("%.2f%%", rate*100) }

// FormatPersons formats a head count in 만명 (ten thousands) with one decimal.
func FormatPersons(n float64) string {
	return money.GroupDigits(fmt.Sprintf("%.1f", n/10_000)) + "만명"
}

// trillions returns an amount in 만원 as a 조원 string for CSV cells.
func trillions(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Trillions().StringFixed(2)
}

// optionalYear renders a nil year as "-".
func optionalYear(y *int) string {
	if y == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *y)
}
