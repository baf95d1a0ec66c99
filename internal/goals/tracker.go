package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

// View pairs a goal with its metrics at read time.
type View struct {
	Goal     model.Goal
	Progress model.GoalProgress
}

// Tracker manages savings goals.
type Tracker struct {
	store *store.Store
	now   func() time.Time
}

// New creates a Tracker.
func New(s *store.Store) *Tracker {
	return &Tracker{store: s, now: time.Now}
}

// SetClock replaces the time source.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// Create stores a goal whose deadline is fixed at now + deadlineDays.
func (t *Tracker) Create(ctx context.Context, userID int64, name string, target float64, deadlineDays int, initial float64) (*model.Goal, error) {
	if name == "" {
		return nil, model.ErrInvalidName
	}
	if !model.ValidAmount(target) || !model.Finite(initial) || initial < 0 {
		return nil, model.ErrInvalidAmount
	}
	if deadlineDays < 0 {
		return nil, model.ErrInvalidDeadline
	}

	now := t.now()
	g := &model.Goal{
		UserID:        userID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: initial,
		Deadline:      now.Add(time.Duration(deadlineDays) * day),
		CreatedAt:     now,
		Completed:     initial >= target,
	}

	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.UserByID(userID); err != nil {
			return err
		}
		if err := tx.InsertGoal(g); err != nil {
			return err
		}
		return tx.Audit(userID, "create", "goal", g.ID, map[string]any{
			"name": name, "target": target, "deadline_days": deadlineDays, "initial": initial,
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("creating goal: %w", err)
	}
	return g, nil
}

// UpdateProgress adds delta to the goal's current amount. Repeated calls accumulate.
func (t *Tracker) UpdateProgress(ctx context.Context, goalID, userID int64, delta float64) (*View, error) {
	return t.mutate(ctx, goalID, userID, "deposit", delta, func(g *model.Goal) {
		g.CurrentAmount += delta
	})
}

// SetProgress overwrites the goal's current amount.
func (t *Tracker) SetProgress(ctx context.Context, goalID, userID int64, amount float64) (*View, error) {
	return t.mutate(ctx, goalID, userID, "set", amount, func(g *model.Goal) {
		g.CurrentAmount = amount
	})
}

func (t *Tracker) mutate(ctx context.Context, goalID, userID int64, action string, value float64, apply func(*model.Goal)) (*View, error) {
	if !model.Finite(value) {
		return nil, model.ErrInvalidAmount
	}
	now := t.now()
	var v *View
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		g, err := tx.GetGoal(goalID, userID)
		if err != nil {
			return err
		}
		apply(g)
		if g.CurrentAmount < 0 || !model.Finite(g.CurrentAmount) {
			return model.ErrInvalidAmount
		}
		g.Completed = g.CurrentAmount >= g.TargetAmount
		if err := tx.SaveGoalProgress(g); err != nil {
			return err
		}
		if err := tx.Audit(userID, action, "goal", goalID, map[string]any{
			"value": value, "current": g.CurrentAmount,
		}, now); err != nil {
			return err
		}
		v = &View{Goal: *g, Progress: Progress(*g, now)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes the goal permanently. It reports false when nothing matched.
func (t *Tracker) Delete(ctx context.Context, goalID, userID int64) (bool, error) {
	var ok bool
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		ok, err = tx.DeleteGoal(goalID, userID)
		if err != nil || !ok {
			return err
		}
		return tx.Audit(userID, "delete", "goal", goalID, nil, t.now())
	})
	return ok, err
}

// Get returns one goal with fresh metrics.
func (t *Tracker) Get(ctx context.Context, goalID, userID int64) (*View, error) {
	var v *View
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		g, err := tx.GetGoal(goalID, userID)
		if err != nil {
			return err
		}
		v = &View{Goal: *g, Progress: Progress(*g, t.now())}
		return nil
	})
	return v, err
}

// List returns every goal of the user with fresh metrics, nearest deadline first.
func (t *Tracker) List(ctx context.Context, userID int64) ([]View, error) {
	var out []View
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		out, err = ListIn(tx, userID, t.now())
		return err
	})
	return out, err
}

// ListIn lists goals with metrics inside an open transaction.
func ListIn(tx *store.Tx, userID int64, now time.Time) ([]View, error) {
	gs, err := tx.ListGoals(userID)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(gs))
	for _, g := range gs {
		out = append(out, View{Goal: g, Progress: Progress(g, now)})
	}
	return out, nil
}
