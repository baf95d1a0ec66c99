package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/finbot/internal/cli"
	"github.com/theirongolddev/finbot/internal/scheduler"
	"github.com/theirongolddev/finbot/internal/tui/components"
	"github.com/theirongolddev/finbot/internal/tui/theme"
)

func (a App) renderGoalsTab(cw int) string {
	t := theme.Active
	s := a.snap

	if len(s.Goals) == 0 {
		return components.ContentCard("Savings goals",
			lipgloss.NewStyle().Foreground(t.TextDim).Render("No goals yet. Create one with `finbot goals add`."), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := 20
	barW := inner - labelW - 10

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	var b strings.Builder
	for i, v := range s.Goals {
		if i > 0 {
			b.WriteString("\n\n")
		}
		p := v.Progress
		b.WriteString(components.PercentBar(v.Goal.Name, p.Percent, components.GoalColor(p.Percent), labelW, barW))
		b.WriteString("\n")

		status := scheduler.StatusDone
		detail := fmt.Sprintf("%s of %s", cli.FormatMoney(s.Currency, v.Goal.CurrentAmount), cli.FormatMoney(s.Currency, v.Goal.TargetAmount))
		if !p.Completed {
			status = scheduler.GoalStatus(p)
			detail += fmt.Sprintf(" · %s left · %s · %s/day",
				cli.FormatMoney(s.Currency, p.Remaining), cli.FormatDaysLeft(p.DaysLeft),
				cli.FormatMoney(s.Currency, p.DailyNeeded))
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s %s · %s", labelW, "", status, detail)))
	}
	return components.ContentCard("Savings goals", b.String(), cw)
}
