package scheduler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/model"
)

// Goal status labels used in the weekly digest.
const (
	StatusOverdue     = "OVERDUE"
	StatusAlmostThere = "ALMOST THERE"
	StatusOnTrack     = "ON TRACK"
	StatusKeepGoing   = "KEEP GOING"
	StatusDone        = "DONE"
)

// GoalStatus classifies a goal's pace for the digest.
func GoalStatus(p model.GoalProgress) string {
	switch {
	case p.DaysLeft <= 0:
		return StatusOverdue
	case p.Percent >= 80:
		return StatusAlmostThere
	case p.Percent >= 50:
		return StatusOnTrack
	default:
		return StatusKeepGoing
	}
}

var statusIcons = map[string]string{
	StatusOverdue:     "⚠️",
	StatusAlmostThere: "🎯",
	StatusOnTrack:     "👍",
	StatusKeepGoing:   "💪",
}

// BillDigest formats the reminder for bills due in the rest of the month.
func BillDigest(u model.User, due []model.FixedBill, currency string) string {
	total := decimal.Zero
	for _, b := range due {
		total = total.Add(decimal.NewFromFloat(b.Amount))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🚨 Hey, %s! You have bills coming due!\n\n", u.DisplayName())
	fmt.Fprintf(&sb, "Total to pay: %s\n\nDetails:\n", model.FormatDecimal(currency, total))
	for _, b := range due {
		fmt.Fprintf(&sb, "- %s: %s (day %d)\n", b.Name, model.FormatMoney(currency, b.Amount), b.DueDay)
	}
	return sb.String()
}

// GoalDigest formats the weekly progress update for open goals.
func GoalDigest(u model.User, views []goals.View, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s, here is how your goals are going:\n\n", u.DisplayName())
	for _, v := range views {
		p := v.Progress
		status := GoalStatus(p)
		fmt.Fprintf(&sb, "%s %s - %s\n", statusIcons[status], status, v.Goal.Name)
		fmt.Fprintf(&sb, "Target: %s\n", model.FormatMoney(currency, v.Goal.TargetAmount))
		fmt.Fprintf(&sb, "Saved: %s (%.1f%%)\n", model.FormatMoney(currency, v.Goal.CurrentAmount), p.Percent)
		fmt.Fprintf(&sb, "Remaining: %s in %d days\n", model.FormatMoney(currency, p.Remaining), p.DaysLeft)
		fmt.Fprintf(&sb, "Needed per day: %s\n\n", model.FormatMoney(currency, p.DailyNeeded))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// openGoals drops goals that are already met.
func openGoals(views []goals.View) []goals.View {
	var out []goals.View
	for _, v := range views {
		if !v.Progress.Completed {
			out = append(out, v)
		}
	}
	return out
}
