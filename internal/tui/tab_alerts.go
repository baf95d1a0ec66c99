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

func alertLabel(a model.Alert) string {
	switch r := a.Rule.(type) {
	case model.LimitRule:
		if r.Category == nil {
			return "Limit (no category)"
		}
		return "Limit " + r.Category.Label()
	case model.LowBalanceRule:
		return "Low balance"
	}
	return a.Rule.Kind()
}

func (a App) renderAlertsTab(cw int) string {
	t := theme.Active
	s := a.snap

	if len(s.Alerts) == 0 {
		return components.ContentCard("Alerts",
			lipgloss.NewStyle().Foreground(t.TextDim).Render("No active alerts. Add one with `finbot alerts add`."), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := 22
	barW := inner - labelW - 10
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	for i, u := range s.Alerts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		pct := u.Percent()
		b.WriteString(components.PercentBar(alertLabel(u.Alert), pct, components.UsageColor(pct), labelW, barW))
		b.WriteString("\n")

		var detail string
		switch u.Alert.Rule.(type) {
		case model.LowBalanceRule:
			detail = fmt.Sprintf("balance %s · alert at or below %s",
				cli.FormatMoney(s.Currency, u.Current), cli.FormatMoney(s.Currency, u.Alert.Rule.Limit()))
		default:
			detail = fmt.Sprintf("spent %s this month · limit %s",
				cli.FormatMoney(s.Currency, u.Current), cli.FormatMoney(s.Currency, u.Alert.Rule.Limit()))
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s #%d · %s", labelW, "", u.Alert.ID, detail)))
	}
	return components.ContentCard("Alerts", b.String(), cw)
}
