package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/tui/components"
	"github.com/theirongolddev/finbot/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.snap
	cur := s.Currency

	balanceTone := components.ToneGood
	if s.User.Balance < 0 {
		balanceTone = components.ToneBad
	}
	net := s.Month.Net()
	netTone := components.ToneGood
	if net.IsNegative() {
		netTone = components.ToneBad
	}

	metrics := components.MetricRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(cur, s.User.Balance), Tone: balanceTone},
		{Label: "Income", Value: cli.FormatDecimal(cur, s.Month.Income), Note: cli.FormatMonth(s.Month.Month)},
		{Label: "Expenses", Value: cli.FormatDecimal(cur, s.Month.Expense), Note: fmt.Sprintf("%d transactions", s.Month.Count)},
		{Label: "Net", Value: cli.FormatDecimal(cur, net), Tone: netTone},
	}, cw)

	widths := components.LayoutRow(cw, 2)

	var cats []components.Bar
	for _, c := range s.Month.ByCategory {
		cats = append(cats, components.Bar{
			Label: c.Category.Label(),
			Value: c.Amount.InexactFloat64(),
			Text:  cli.FormatDecimal(cur, c.Amount),
		})
	}
	catBody := components.HorizontalBars(cats, t.Expense, components.CardInnerWidth(widths[0]))
	if catBody == "" {
		catBody = lipgloss.NewStyle().Foreground(t.TextDim).Render("No expenses this month")
	}
	spark := components.Sparkline(s.Daily, t.Expense)
	catBody += "\n\n" + lipgloss.NewStyle().Foreground(t.TextMuted).Render("Daily ") + spark

	var recent strings.Builder
	if len(s.Recent) == 0 {
		recent.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("No transactions yet"))
	}
	inner := components.CardInnerWidth(widths[1])
	for i, tx := range s.Recent {
		if i > 0 {
			recent.WriteString("\n")
		}
		amount := cli.RenderAmount(cli.FormatSigned(cur, tx), tx.Type == model.TxExpense)
		left := cli.FormatDate(tx.Date, a.src.Location)[5:] + " " + tx.Category.Label()
		if tx.Description != "" {
			left += " · " + tx.Description
		}
		gap := inner - lipgloss.Width(left) - lipgloss.Width(amount)
		if gap < 1 {
			left = truncateWidth(left, inner-lipgloss.Width(amount)-1)
			gap = 1
		}
		recent.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Render(left))
		recent.WriteString(strings.Repeat(" ", max(gap, 1)))
		recent.WriteString(amount)
	}

	cards := components.CardRow([]string{
		components.ContentCard("Spending by category", catBody, widths[0]),
		components.ContentCard("Recent", recent.String(), widths[1]),
	})
	return lipgloss.JoinVertical(lipgloss.Left, metrics, cards)
}

func truncateWidth(s string, w int) string {
	r := []rune(s)
	if w <= 0 {
		return ""
	}
	if len(r) <= w {
		return s
	}
	return string(r[:w-1]) + "…"
}
