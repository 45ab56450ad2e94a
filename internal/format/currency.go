// Package format renders money and timestamps the way the storefront shows
// them: Indonesian Rupiah amounts and Indonesian long dates.
package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol is prefixed to every formatted amount.
const CurrencySymbol = "Rp"

var displayLanguage = language.Indonesian

// uint64 holds any 19 digit integer part.
const maxPrinterDigits = 19

// Currency formats amount as Rupiah with two fraction digits, e.g.
// 15000 -> "Rp15.000,00" and -1250 -> "-Rp1.250,00". The digits come from the
// decimal itself so large amounts stay exact.
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	intPart, frac, _ := strings.Cut(rounded.StringFixed(2), ".")

	p := message.NewPrinter(displayLanguage)
	return sign + CurrencySymbol + groupDigits(p, intPart) + decimalSeparator(p) + frac
}

// CurrencyFloat is Currency for float inputs.
func CurrencyFloat(amount float64) string {
	return Currency(decimal.NewFromFloat(amount))
}

// groupDigits inserts locale group separators into a run of decimal digits.
// Runs longer than the printer's integer range are split into a grouped head
// and a tail of three-digit groups.
func groupDigits(p *message.Printer, digits string) string {
	if len(digits) <= maxPrinterDigits {
		n, err := strconv.ParseUint(digits, 10, 64)
		if err == nil {
			return p.Sprint(number.Decimal(n))
		}
	}
	tailLen := 18
	head, tail := digits[:len(digits)-tailLen], digits[len(digits)-tailLen:]
	sep := groupSeparator(p)
	var b strings.Builder
	b.WriteString(groupDigits(p, head))
	for i := 0; i < tailLen; i += 3 {
		b.WriteString(sep)
		b.WriteString(tail[i : i+3])
	}
	return b.String()
}

func groupSeparator(p *message.Printer) string {
	return strings.Trim(p.Sprint(number.Decimal(1000)), "01")
}

func decimalSeparator(p *message.Printer) string {
	return strings.Trim(p.Sprint(number.Decimal(0.5, number.Scale(1))), "05")
}
