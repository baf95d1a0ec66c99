package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/theirongolddev/finbot/internal/model"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, is_completed, created_at`

func scanGoal(row interface{ Scan(...any) error }) (*model.Goal, error) {
	var g model.Goal
	var deadline, created string
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
		&deadline, &g.Completed, &created); err != nil {
		return nil, err
	}
	g.Deadline = parseTime(deadline)
	g.CreatedAt = parseTime(created)
	return &g, nil
}

// InsertGoal stores a new goal and sets its ID.
func (t *Tx) InsertGoal(g *model.Goal) error {
	res, err := t.exec(`INSERT INTO goals (user_id, name, target_amount, current_amount, deadline, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, formatTime(g.Deadline),
		boolInt(g.Completed), formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

// GetGoal loads a goal owned by userID.
func (t *Tx) GetGoal(id, userID int64) (*model.Goal, error) {
	g, err := scanGoal(t.queryRow(`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return g, err
}

// ListGoals returns the user's goals, nearest deadline first.
func (t *Tx) ListGoals(userID int64) ([]model.Goal, error) {
	rows, err := t.query(`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY deadline, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// SaveGoalProgress writes the current amount and the derived completion flag.
func (t *Tx) SaveGoalProgress(g *model.Goal) error {
	res, err := t.exec(`UPDATE goals SET current_amount = ?, is_completed = ? WHERE id = ? AND user_id = ?`,
		g.CurrentAmount, boolInt(g.Completed), g.ID, g.UserID)
	if err != nil {
		return err
	}
	ok, err := affected(res)
	if err == nil && !ok {
		err = model.ErrNotFound
	}
	return err
}

// DeleteGoal removes the row. It reports false when nothing matched.
func (t *Tx) DeleteGoal(id, userID int64) (bool, error) {
	res, err := t.exec(`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}
