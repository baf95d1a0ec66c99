// Package bills tracks recurring fixed bills and answers which are due soon.
package bills

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

// Tracker manages a user's fixed bills.
type Tracker struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

// New creates a Tracker. loc decides which calendar day "today" is.
func New(s *store.Store, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{store: s, loc: loc, now: time.Now}
}

// SetClock replaces the time source.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// ListActive returns active bills ordered by due day.
func (t *Tracker) ListActive(ctx context.Context, userID int64) ([]model.FixedBill, error) {
	var out []model.FixedBill
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.ListBills(userID, true)
		return err
	})
	return out, err
}

// DueSoon returns active bills whose due day has not yet passed this month.
// Bills due early next month are not included.
func (t *Tracker) DueSoon(ctx context.Context, userID int64) ([]model.FixedBill, error) {
	var out []model.FixedBill
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		out, err = DueSoonIn(tx, userID, t.now().In(t.loc))
		return err
	})
	return out, err
}

// DueSoonIn runs the due-soon query inside an open transaction.
func DueSoonIn(tx *store.Tx, userID int64, today time.Time) ([]model.FixedBill, error) {
	active, err := tx.ListBills(userID, true)
	if err != nil {
		return nil, err
	}
	return FilterDueSoon(active, today.Day()), nil
}

// FilterDueSoon keeps bills with DueDay >= day, preserving order.
func FilterDueSoon(bills []model.FixedBill, day int) []model.FixedBill {
	var out []model.FixedBill
	for _, b := range bills {
		if b.Active && b.DueDay >= day {
			out = append(out, b)
		}
	}
	return out
}

// Create stores a new active bill.
func (t *Tracker) Create(ctx context.Context, userID int64, name string, amount float64, dueDay int, category model.Category) (*model.FixedBill, error) {
	now := t.now()
	b := &model.FixedBill{
		UserID:    userID,
		Name:      name,
		Amount:    amount,
		DueDay:    dueDay,
		Category:  category,
		Active:    true,
		CreatedAt: now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.UserByID(userID); err != nil {
			return err
		}
		if err := tx.InsertBill(b); err != nil {
			return err
		}
		return tx.Audit(userID, "create", "bill", b.ID, map[string]any{
			"name": name, "amount": amount, "due_day": dueDay, "category": string(category),
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("creating bill: %w", err)
	}
	return b, nil
}

// Update applies the provided fields of p to the bill. Inactive bills can still
// be updated by their owner.
func (t *Tracker) Update(ctx context.Context, billID, userID int64, p model.BillPatch) (*model.FixedBill, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var b *model.FixedBill
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		b, err = tx.GetBill(billID, userID)
		if err != nil {
			return err
		}
		p.Apply(b)
		if err := tx.SaveBill(b); err != nil {
			return err
		}
		return tx.Audit(userID, "update", "bill", billID, patchDetails(p), t.now())
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SoftDelete deactivates the bill. It reports false when the bill is missing or
// belongs to someone else.
func (t *Tracker) SoftDelete(ctx context.Context, billID, userID int64) (bool, error) {
	var ok bool
	err := t.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		ok, err = tx.SetBillActive(billID, userID, false)
		if err != nil || !ok {
			return err
		}
		return tx.Audit(userID, "delete", "bill", billID, nil, t.now())
	})
	return ok, err
}

func patchDetails(p model.BillPatch) map[string]any {
	d := map[string]any{}
	if p.Name != nil {
		d["name"] = *p.Name
	}
	if p.Amount != nil {
		d["amount"] = *p.Amount
	}
	if p.DueDay != nil {
		d["due_day"] = *p.DueDay
	}
	if p.Category != nil {
		d["category"] = string(*p.Category)
	}
	if p.Active != nil {
		d["active"] = *p.Active
	}
	return d
}
