package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal places written for prices and indicator values.
const Places = 4

// Number renders v with at most Places decimals and no trailing zeros.
func Number(v float64) string {
	return decimal.NewFromFloat(v).Round(Places).String()
}

// Money renders v as a dollar amount with thousands separators, e.g. $1,234.56.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	return sign + "$" + groupThousands(intPart) + "." + frac
}

// Percent renders a fraction as a percentage with two decimals, e.g. 0.1234 -> 12.34%.
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
