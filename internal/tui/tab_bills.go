package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/tui/components"
	"github.com/theirongolddev/finbot/internal/tui/theme"
)

func (a App) renderBillsTab(cw int) string {
	t := theme.Active
	s := a.snap

	if len(s.Bills) == 0 {
		return components.ContentCard("Fixed bills",
			lipgloss.NewStyle().Foreground(t.TextDim).Render("No active bills. Add one with `finbot bills add`."), cw)
	}

	dueSoon := make(map[int64]bool, len(s.DueSoon))
	total, dueTotal := 0.0, 0.0
	for _, b := range s.DueSoon {
		dueSoon[b.ID] = true
		dueTotal += b.Amount
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("%-4s %-28s %-14s %14s", "Day", "Name", "Category", "Amount")))
	for _, bill := range s.Bills {
		total += bill.Amount
		line := fmt.Sprintf("%-4d %-28s %-14s %14s", bill.DueDay, truncateWidth(bill.Name, 28),
			bill.Category.Label(), cli.FormatMoney(s.Currency, bill.Amount))
		if dueSoon[bill.ID] {
			b.WriteString(warnStyle.Render(line + "  ● due"))
		} else {
			b.WriteString(nameStyle.Render(line))
		}
		b.WriteString("\n")
	}

	metrics := components.MetricRow([]components.Metric{
		{Label: "Monthly fixed", Value: cli.FormatMoney(s.Currency, total), Note: fmt.Sprintf("%d bills", len(s.Bills))},
		{Label: "Still due this month", Value: cli.FormatMoney(s.Currency, dueTotal), Note: fmt.Sprintf("%d bills", len(s.DueSoon)), Tone: components.ToneWarn},
	}, cw)
	return lipgloss.JoinVertical(lipgloss.Left, metrics, components.ContentCard("Fixed bills", strings.TrimRight(b.String(), "\n"), cw))
}
