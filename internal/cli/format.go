// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finbot/internal/model"
)

// FormatMoney formats an amount with the currency prefix.
// e.g., ("R$", 1234.5) -> "R$1,234.50"
func FormatMoney(currency string, amount float64) string {
	return model.FormatMoney(currency, amount)
}

// FormatDecimal is FormatMoney for decimal aggregates.
func FormatDecimal(currency string, d decimal.Decimal) string {
	return model.FormatDecimal(currency, d)
}

// FormatSigned formats a transaction amount with its direction.
// e.g., expense 50 -> "-R$50.00", income 50 -> "+R$50.00"
func FormatSigned(currency string, t model.Transaction) string {
	if t.Type == model.TxExpense {
		return "-" + FormatMoney(currency, t.Amount)
	}
	return "+" + FormatMoney(currency, t.Amount)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(currency string, current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return FormatDecimal(currency, delta)
	}
	return "+" + FormatDecimal(currency, delta)
}

// FormatDate renders a calendar date in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02")
}

// FormatDaysLeft renders a goal countdown.
// e.g., 0 -> "due", 1 -> "1 day", 12 -> "12 days"
func FormatDaysLeft(days int) string {
	switch {
	case days <= 0:
		return "due"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// FormatMonth renders the month label used in report titles.
func FormatMonth(t time.Time) string {
	return t.Format("January 2006")
}
