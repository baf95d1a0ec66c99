package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finbot/internal/bills"
	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/ledger"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

// Sources are the services the dashboard reads from.
type Sources struct {
	Store    *store.Store
	Ledger   *ledger.Ledger
	Location *time.Location
	Currency string
	Now      func() time.Time
}

// AlertUsage pairs an active alert with the figure it is checked against.
type AlertUsage struct {
	Alert   model.Alert
	Current float64
}

// Percent is Current relative to the threshold. Low-balance alerts invert the
// ratio so that 100 still means "breached".
func (u AlertUsage) Percent() float64 {
	th := u.Alert.Rule.Limit()
	switch u.Alert.Rule.(type) {
	case model.LowBalanceRule:
		if u.Current <= 0 {
			return 100
		}
		return th / u.Current * 100
	default:
		if th <= 0 {
			return 0
		}
		return u.Current / th * 100
	}
}

// Snapshot is everything one dashboard frame shows.
type Snapshot struct {
	User     model.User
	Currency string
	Month    ledger.Summary
	Daily    []float64 // expenses per day of the month so far
	Recent   []model.Transaction
	Bills    []model.FixedBill
	DueSoon  []model.FixedBill
	Goals    []goals.View
	Alerts   []AlertUsage
	LoadedAt time.Time
}

// Load builds a snapshot for the user with the given chat identity.
func Load(ctx context.Context, src Sources, telegramID int64) (*Snapshot, error) {
	now := time.Now
	if src.Now != nil {
		now = src.Now
	}
	loc := src.Location
	if loc == nil {
		loc = time.UTC
	}
	ts := now()
	start := ledger.MonthStart(ts, loc)

	snap := &Snapshot{LoadedAt: ts}
	err := src.Store.WithTx(ctx, func(tx *store.Tx) error {
		u, err := tx.UserByTelegramID(telegramID)
		if err != nil {
			return fmt.Errorf("user %d: %w", telegramID, err)
		}
		snap.User = *u

		prefs, err := tx.Preferences(u.ID, model.Preferences{Currency: src.Currency, NotificationsEnabled: true})
		if err != nil {
			return err
		}
		snap.Currency = prefs.Currency

		if snap.Bills, err = tx.ListBills(u.ID, true); err != nil {
			return err
		}
		snap.DueSoon = bills.FilterDueSoon(snap.Bills, ts.In(loc).Day())

		if snap.Goals, err = goals.ListIn(tx, u.ID, ts); err != nil {
			return err
		}

		active, err := tx.ListAlerts(u.ID, true)
		if err != nil {
			return err
		}
		for _, a := range active {
			usage := AlertUsage{Alert: a}
			switch r := a.Rule.(type) {
			case model.LimitRule:
				if r.Category != nil {
					sum, err := ledger.SumExpenses(tx, u.ID, *r.Category, start)
					if err != nil {
						return err
					}
					usage.Current = sum.InexactFloat64()
				}
			case model.LowBalanceRule:
				usage.Current = u.Balance
			}
			snap.Alerts = append(snap.Alerts, usage)
		}

		rows, err := tx.ListTransactions(u.ID, model.TxFilter{Since: start})
		if err != nil {
			return err
		}
		snap.Daily = dailyExpenses(rows, start, ts, loc)
		if len(rows) > 10 {
			rows = rows[:10]
		}
		snap.Recent = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snap.Month, err = src.Ledger.MonthlySummary(ctx, snap.User.ID, ts); err != nil {
		return nil, err
	}
	return snap, nil
}

func dailyExpenses(rows []model.Transaction, start, now time.Time, loc *time.Location) []float64 {
	days := now.In(loc).Day()
	sums := make([]decimal.Decimal, days)
	for _, r := range rows {
		if r.Type != model.TxExpense || r.Date.Before(start) {
			continue
		}
		d := r.Date.In(loc).Day() - 1
		if d < 0 || d >= days {
			continue
		}
		sums[d] = sums[d].Add(decimal.NewFromFloat(r.Amount))
	}
	out := make([]float64, days)
	for i, s := range sums {
		out[i] = s.InexactFloat64()
	}
	return out
}
