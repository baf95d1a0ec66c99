package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders amount with two decimals, comma thousands and a currency
// prefix, e.g. FormatMoney("R$", -1234.5) == "-R$1,234.50".
func FormatMoney(currency string, amount float64) string {
	return FormatDecimal(currency, decimal.NewFromFloat(amount))
}

// FormatDecimal is FormatMoney for decimal values.
func FormatDecimal(currency string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(currency)
	head := len(whole) % 3
	if head > 0 {
		b.WriteString(whole[:head])
	}
	for i := head; i < len(whole); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
