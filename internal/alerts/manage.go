package alerts

import (
	"context"
	"fmt"

	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

func validateRule(r model.Rule) error {
	switch r := r.(type) {
	case model.LimitRule:
		if r.Category != nil && !r.Category.Valid() {
			return model.ErrInvalidCategory
		}
		if !model.ValidAmount(r.Threshold) {
			return model.ErrInvalidAmount
		}
	case model.LowBalanceRule:
		// A low-balance threshold may be zero or negative (overdraft warning).
		if !model.Finite(r.Threshold) {
			return model.ErrInvalidAmount
		}
	default:
		return model.ErrInvalidAlertType
	}
	return nil
}

// Create stores a new active alert.
func (e *Evaluator) Create(ctx context.Context, userID int64, rule model.Rule) (*model.Alert, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	now := e.now()
	a := &model.Alert{UserID: userID, Rule: rule, Active: true, CreatedAt: now}

	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.UserByID(userID); err != nil {
			return err
		}
		if err := tx.InsertAlert(a); err != nil {
			return err
		}
		details := map[string]any{"type": rule.Kind(), "threshold": rule.Limit()}
		if c := model.RuleCategory(rule); c != nil {
			details["category"] = string(*c)
		}
		return tx.Audit(userID, "create", "alert", a.ID, details, now)
	})
	if err != nil {
		return nil, fmt.Errorf("creating alert: %w", err)
	}
	return a, nil
}

// List returns the user's active alerts in stored order.
func (e *Evaluator) List(ctx context.Context, userID int64) ([]model.Alert, error) {
	var out []model.Alert
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListAlerts(userID, true)
		return err
	})
	return out, err
}

// Update applies the provided fields of p. Inactive alerts can still be updated
// by their owner.
func (e *Evaluator) Update(ctx context.Context, alertID, userID int64, p model.AlertPatch) (*model.Alert, error) {
	var a *model.Alert
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		a, err = tx.GetAlert(alertID, userID)
		if err != nil {
			return err
		}
		details := map[string]any{}
		if p.Threshold != nil {
			a.Rule = model.WithThreshold(a.Rule, *p.Threshold)
			details["threshold"] = *p.Threshold
		}
		if p.Active != nil {
			a.Active = *p.Active
			details["active"] = *p.Active
		}
		if err := validateRule(a.Rule); err != nil {
			return err
		}
		if err := tx.SaveAlert(a); err != nil {
			return err
		}
		return tx.Audit(userID, "update", "alert", alertID, details, e.now())
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SoftDelete deactivates the alert. It reports false when nothing matched.
func (e *Evaluator) SoftDelete(ctx context.Context, alertID, userID int64) (bool, error) {
	var ok bool
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		ok, err = tx.SetAlertActive(alertID, userID, false)
		if err != nil || !ok {
			return err
		}
		return tx.Audit(userID, "delete", "alert", alertID, nil, e.now())
	})
	return ok, err
}
