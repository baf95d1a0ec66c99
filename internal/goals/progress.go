// Package goals derives savings pace metrics and manages goal progress.
package goals

import (
	"math"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
)

const day = 24 * time.Hour

// Progress computes the pace metrics of g at now. It never reads the stored
// completion flag.
func Progress(g model.Goal, now time.Time) model.GoalProgress {
	return Compute(g.TargetAmount, g.CurrentAmount, g.Deadline, now)
}

// Compute is Progress over raw values.
func Compute(target, current float64, deadline, now time.Time) model.GoalProgress {
	p := model.GoalProgress{
		Percent:   Percent(target, current),
		DaysLeft:  DaysLeft(deadline, now),
		Remaining: math.Max(0, target-current),
		Completed: current >= target,
	}
	if p.DaysLeft > 0 {
		p.DailyNeeded = p.Remaining / float64(p.DaysLeft)
	} else {
		p.DailyNeeded = p.Remaining
	}
	return p
}

// Percent is 100*current/target. A zero target counts as met.
func Percent(target, current float64) float64 {
	if target == 0 {
		return 100
	}
	return 100 * current / target
}

// DaysLeft rounds the time to deadline up to whole days, never below zero.
func DaysLeft(deadline, now time.Time) int {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(day)))
}
