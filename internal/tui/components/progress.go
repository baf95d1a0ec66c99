package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finbot/internal/tui/theme"
)

// GoalColor maps goal completion (0-100) to a color: the closer to done the
// greener.
func GoalColor(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 100:
		return t.Income
	case pct >= 80:
		return t.AccentBright
	case pct >= 50:
		return t.Accent
	default:
		return t.Info
	}
}

// UsageColor maps spending against a limit (0-100+) to a color: the closer to
// the limit the redder.
func UsageColor(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 100:
		return t.Expense
	case pct >= 80:
		return t.Warning
	default:
		return t.Income
	}
}

// PercentBar renders a labeled bar for a 0-100 value.
func PercentBar(label string, pct float64, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active

	shown := pct
	if shown < 0 {
		shown = 0
	}
	if shown > 100 {
		shown = 100
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		" " + bar.ViewAs(shown/100) +
		" " + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}
