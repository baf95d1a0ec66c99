package model

import "time"

// Goal is a savings target with a deadline fixed at creation.
type Goal struct {
	ID            int64
	UserID        int64
	Name          string
	TargetAmount  float64
	CurrentAmount float64
	Deadline      time.Time
	CreatedAt     time.Time
	// Completed mirrors the last write; read paths use GoalProgress.Completed.
	Completed bool
}

// GoalProgress holds the pace metrics derived from a goal at one instant.
type GoalProgress struct {
	Percent     float64
	DaysLeft    int
	Remaining   float64
	DailyNeeded float64
	Completed   bool
}
