// Package money holds fixed-point amount helpers.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places stored for amounts.
const Scale = 2

// IsValidAmount reports whether d is strictly positive and has at most two
// decimal places.
func IsValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(Scale))
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatEuro formats d in Italian notation, e.g. 1234.5 -> "€ 1.234,50".
func FormatEuro(d decimal.Decimal) string {
	return "€ " + FormatPlain(d)
}

// FormatPlain formats d with Italian separators and no currency symbol.
func FormatPlain(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(Scale), ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteRune('.')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "," + decPart
}
