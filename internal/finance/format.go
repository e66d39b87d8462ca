package finance

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount as grouped Rupiah text. Rounding happens only
// here at the display edge; the ledger arithmetic stays decimal throughout.
func FormatIDR(amount decimal.Decimal) string {
	value, _ := amount.Round(0).Float64()
	return idPrinter.Sprintf("Rp%.0f", value)
}

// FormatPercent renders a ratio value with two decimals and a percent sign.
func FormatPercent(ratio decimal.Decimal) string {
	value, _ := ratio.Round(2).Float64()
	return idPrinter.Sprintf("%.2f%%", value)
}

// FormatMonths renders a runway figure with one decimal place.
func FormatMonths(months decimal.Decimal) string {
	value, _ := months.Round(1).Float64()
	return idPrinter.Sprintf("%.1f", value)
}
