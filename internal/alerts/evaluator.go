// Package alerts evaluates user-defined spending and balance thresholds and
// notifies the user when one is breached.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/finbot/internal/ledger"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/notify"
	"github.com/theirongolddev/finbot/internal/observability"
	"github.com/theirongolddev/finbot/internal/store"
)

// Options tunes an Evaluator. Zero values fall back to defaults.
type Options struct {
	// Location decides where the calendar month starts. Default UTC.
	Location *time.Location
	// Currency is used when the user has no stored preference. Default "R$".
	Currency string
	// SendTimeout bounds each delivery attempt. Default 10s.
	SendTimeout time.Duration
}

// Evaluator checks a user's active alerts against the ledger.
type Evaluator struct {
	store    *store.Store
	notifier notify.Notifier
	obs      observability.Observer
	opts     Options
	now      func() time.Time
}

// New creates an Evaluator. A nil observer discards events.
func New(s *store.Store, n notify.Notifier, obs observability.Observer, opts Options) *Evaluator {
	if obs == nil {
		obs = observability.Nop{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Currency == "" {
		opts.Currency = "R$"
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	return &Evaluator{store: s, notifier: n, obs: obs, opts: opts, now: time.Now}
}

// SetClock replaces the time source.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.now = now
}

type pending struct {
	trigger model.Trigger
	text    string
}

// Evaluate runs one pass over the user's active alerts. Every breached alert is
// returned, whether or not its notification went out. Delivery failures are
// reported to the observer and never returned.
func (e *Evaluator) Evaluate(ctx context.Context, userID int64) ([]model.Trigger, error) {
	var (
		user *model.User
		hits []pending
	)
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		user, err = tx.UserByID(userID)
		if err != nil {
			return err
		}
		prefs, err := tx.Preferences(userID, model.Preferences{Currency: e.opts.Currency, NotificationsEnabled: true})
		if err != nil {
			return err
		}
		hits, err = e.check(tx, user, prefs.Currency)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("evaluating alerts for user %d: %w", userID, err)
	}

	// Deliveries happen after the transaction is released so a slow chat API
	// never holds the database lock.
	triggers := make([]model.Trigger, 0, len(hits))
	for _, h := range hits {
		e.obs.AlertTriggered(userID, h.trigger)
		h.trigger.Delivered = e.deliver(ctx, user.TelegramID, h.text)
		triggers = append(triggers, h.trigger)
	}
	return triggers, nil
}

func (e *Evaluator) check(tx *store.Tx, user *model.User, currency string) ([]pending, error) {
	active, err := tx.ListAlerts(user.ID, true)
	if err != nil {
		return nil, err
	}

	since := ledger.MonthStart(e.now(), e.opts.Location)
	var hits []pending
	for _, a := range active {
		switch r := a.Rule.(type) {
		case model.LimitRule:
			if r.Category == nil {
				continue
			}
			total, err := ledger.SumExpenses(tx, user.ID, *r.Category, since)
			if err != nil {
				return nil, err
			}
			current := total.InexactFloat64()
			if current < r.Threshold {
				continue
			}
			cat := *r.Category
			hits = append(hits, pending{
				trigger: model.Trigger{AlertID: a.ID, Type: model.AlertTypeLimit, Category: &cat,
					Current: current, Threshold: r.Threshold},
				text: fmt.Sprintf("🔔 Spending limit reached for %s!\nSpent: %s / Limit: %s",
					cat.Label(), model.FormatDecimal(currency, total), model.FormatMoney(currency, r.Threshold)),
			})
		case model.LowBalanceRule:
			if user.Balance > r.Threshold {
				continue
			}
			hits = append(hits, pending{
				trigger: model.Trigger{AlertID: a.ID, Type: model.AlertTypeLowBalance,
					Current: user.Balance, Threshold: r.Threshold},
				text: fmt.Sprintf("🔔 Your balance is low!\nCurrent balance: %s / Limit: %s",
					model.FormatMoney(currency, user.Balance), model.FormatMoney(currency, r.Threshold)),
			})
		}
	}
	return hits, nil
}

func (e *Evaluator) deliver(ctx context.Context, chatID int64, text string) bool {
	if e.notifier == nil || chatID == 0 {
		return false
	}
	sendCtx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
	defer cancel()

	if err := e.notifier.Send(sendCtx, chatID, text); err != nil {
		e.obs.DeliveryFailed(chatID, err)
		return false
	}
	e.obs.DeliverySucceeded(chatID)
	return true
}
