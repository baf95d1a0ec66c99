// Package ledger records transactions and computes spending aggregates on demand.
// Nothing derived here is persisted; every sum is recomputed from the rows.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

// Entry is the input of Record.
type Entry struct {
	Amount      float64
	Type        model.TxType
	Category    model.Category
	Description string
	// At defaults to the ledger clock when zero.
	At        time.Time
	Recurring bool
	// ApplyToBalance adjusts the advisory user balance in the same transaction.
	ApplyToBalance bool
}

// Validate checks the invariants of a ledger entry.
func (e Entry) Validate() error {
	if !model.ValidAmount(e.Amount) {
		return model.ErrInvalidAmount
	}
	if !e.Type.Valid() {
		return model.ErrInvalidTxType
	}
	if !e.Category.Valid() {
		return model.ErrInvalidCategory
	}
	return nil
}

// Ledger is the transaction service.
type Ledger struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

// New creates a Ledger. loc controls month boundaries; nil means UTC.
func New(s *store.Store, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{store: s, loc: loc, now: time.Now}
}

// SetClock replaces the time source.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Location returns the timezone used for month windows.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Record appends a transaction for userID.
func (l *Ledger) Record(ctx context.Context, userID int64, e Entry) (*model.Transaction, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	now := l.now()
	if e.At.IsZero() {
		e.At = now
	}

	tx := &model.Transaction{
		UserID:      userID,
		Amount:      e.Amount,
		Type:        e.Type,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.At,
		Recurring:   e.Recurring,
	}

	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		if _, err := t.UserByID(userID); err != nil {
			return err
		}
		if err := t.InsertTransaction(tx); err != nil {
			return err
		}
		details := map[string]any{
			"amount":   e.Amount,
			"type":     string(e.Type),
			"category": string(e.Category),
		}
		if e.ApplyToBalance {
			balance, err := t.AdjustBalance(userID, tx.Signed())
			if err != nil {
				return err
			}
			details["balance"] = balance
		}
		return t.Audit(userID, "create", "transaction", tx.ID, details, now)
	})
	if err != nil {
		return nil, fmt.Errorf("recording transaction: %w", err)
	}
	return tx, nil
}

// List returns the user's transactions matching f, newest first.
func (l *Ledger) List(ctx context.Context, userID int64, f model.TxFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	err := l.store.WithTx(ctx, func(t *store.Tx) error {
		var err error
		out, err = t.ListTransactions(userID, f)
		return err
	})
	return out, err
}

// MonthStart returns midnight of the first day of the month containing ts, in loc.
func MonthStart(ts time.Time, loc *time.Location) time.Time {
	ts = ts.In(loc)
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, loc)
}

// SumExpenses returns the total EXPENSE amount of one category since the given instant.
// It runs inside the caller's transaction.
func SumExpenses(t *store.Tx, userID int64, category model.Category, since time.Time) (decimal.Decimal, error) {
	rows, err := t.ListTransactions(userID, model.TxFilter{
		Since:    since,
		Category: category,
		Type:     model.TxExpense,
	})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.Amount))
	}
	return total, nil
}

// CategoryTotal is one line of a monthly breakdown.
type CategoryTotal struct {
	Category model.Category
	Amount   decimal.Decimal
}

// Summary aggregates one calendar month.
type Summary struct {
	Month      time.Time
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Count      int
	ByCategory []CategoryTotal
}

// Net is income minus expense.
func (s Summary) Net() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

// MonthlySummary aggregates the calendar month containing month.
func (l *Ledger) MonthlySummary(ctx context.Context, userID int64, month time.Time) (Summary, error) {
	start := MonthStart(month, l.loc)
	end := start.AddDate(0, 1, 0)

	rows, err := l.List(ctx, userID, model.TxFilter{Since: start, Until: end})
	if err != nil {
		return Summary{}, err
	}
	return summarize(start, rows), nil
}

// MonthToDate aggregates from the start of the current month until now.
func (l *Ledger) MonthToDate(ctx context.Context, userID int64) (Summary, error) {
	return l.MonthlySummary(ctx, userID, l.now())
}

func summarize(start time.Time, rows []model.Transaction) Summary {
	s := Summary{Month: start, Income: decimal.Zero, Expense: decimal.Zero, Count: len(rows)}
	byCat := make(map[model.Category]decimal.Decimal)
	for _, r := range rows {
		amt := decimal.NewFromFloat(r.Amount)
		switch r.Type {
		case model.TxIncome:
			s.Income = s.Income.Add(amt)
		case model.TxExpense:
			s.Expense = s.Expense.Add(amt)
			byCat[r.Category] = byCat[r.Category].Add(amt)
		}
	}

	for c, amt := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: c, Amount: amt})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if !s.ByCategory[i].Amount.Equal(s.ByCategory[j].Amount) {
			return s.ByCategory[i].Amount.GreaterThan(s.ByCategory[j].Amount)
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return s
}
