package ledger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/store"
)

func setup(t *testing.T) (*Ledger, *store.Store, int64) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "finbot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	var userID int64
	err = s.WithTx(context.Background(), func(tx *store.Tx) error {
		u, _, err := tx.GetOrCreateUser(100, model.Profile{FirstName: "Ana"}, time.Now())
		if err != nil {
			return err
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	l := New(s, time.UTC)
	l.SetClock(func() time.Time { return time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC) })
	return l, s, userID
}

func TestMonthStart(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	tests := []struct {
		name string
		in   time.Time
		loc  *time.Location
		want time.Time
	}{
		{"utc mid-month", time.Date(2024, 3, 20, 15, 4, 5, 0, time.UTC), time.UTC,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"first instant", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.UTC,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		// 02:00 UTC on Apr 1 is still Mar 31 in Sao Paulo.
		{"local zone", time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC), sp,
			time.Date(2024, 3, 1, 0, 0, 0, 0, sp)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthStart(tt.in, tt.loc)
			if !got.Equal(tt.want) {
				t.Fatalf("MonthStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordRejectsInvalidEntries(t *testing.T) {
	l, _, userID := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"zero amount", Entry{Amount: 0, Type: model.TxExpense, Category: model.CategoryFood}, model.ErrInvalidAmount},
		{"negative amount", Entry{Amount: -1, Type: model.TxExpense, Category: model.CategoryFood}, model.ErrInvalidAmount},
		{"infinite amount", Entry{Amount: math.Inf(1), Type: model.TxIncome, Category: model.CategoryOther}, model.ErrInvalidAmount},
		{"NaN amount", Entry{Amount: math.NaN(), Type: model.TxExpense, Category: model.CategoryFood}, model.ErrInvalidAmount},
		{"bad type", Entry{Amount: 1, Type: "GIFT", Category: model.CategoryFood}, model.ErrInvalidTxType},
		{"bad category", Entry{Amount: 1, Type: model.TxExpense, Category: "PETS"}, model.ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Record(ctx, userID, tt.entry)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Record err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := l.Record(ctx, 9999, Entry{Amount: 1, Type: model.TxIncome, Category: model.CategoryOther}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Record(unknown user) err = %v, want ErrNotFound", err)
	}
}

func TestRecordAppliesBalance(t *testing.T) {
	l, s, userID := setup(t)
	ctx := context.Background()

	if _, err := l.Record(ctx, userID, Entry{Amount: 100, Type: model.TxIncome, Category: model.CategoryOther, ApplyToBalance: true}); err != nil {
		t.Fatalf("Record income: %v", err)
	}
	if _, err := l.Record(ctx, userID, Entry{Amount: 30, Type: model.TxExpense, Category: model.CategoryFood, ApplyToBalance: true}); err != nil {
		t.Fatalf("Record expense: %v", err)
	}
	if _, err := l.Record(ctx, userID, Entry{Amount: 5, Type: model.TxExpense, Category: model.CategoryFood}); err != nil {
		t.Fatalf("Record detached: %v", err)
	}

	_ = s.WithTx(ctx, func(tx *store.Tx) error {
		u, err := tx.UserByID(userID)
		if err != nil {
			t.Fatalf("UserByID: %v", err)
		}
		if u.Balance != 70 {
			t.Fatalf("balance = %v, want 70", u.Balance)
		}
		entries, err := tx.RecentAudit(userID, 10)
		if err != nil {
			t.Fatalf("RecentAudit: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("audit entries = %d, want 3", len(entries))
		}
		return nil
	})
}

func TestSumExpensesWindow(t *testing.T) {
	l, s, userID := setup(t)
	ctx := context.Background()

	entries := []Entry{
		{Amount: 500, Type: model.TxExpense, Category: model.CategoryFood, At: time.Date(2024, 2, 28, 23, 59, 0, 0, time.UTC)},
		{Amount: 300.10, Type: model.TxExpense, Category: model.CategoryFood, At: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 200.20, Type: model.TxExpense, Category: model.CategoryFood, At: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
		{Amount: 999, Type: model.TxIncome, Category: model.CategoryFood, At: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)},
		{Amount: 75, Type: model.TxExpense, Category: model.CategoryTransport, At: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if _, err := l.Record(ctx, userID, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	since := MonthStart(l.now(), time.UTC)
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		got, err := SumExpenses(tx, userID, model.CategoryFood, since)
		if err != nil {
			return err
		}
		if want := decimal.RequireFromString("500.30"); !got.Equal(want) {
			t.Fatalf("SumExpenses = %s, want %s", got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestMonthlySummary(t *testing.T) {
	l, _, userID := setup(t)
	ctx := context.Background()

	entries := []Entry{
		{Amount: 3000, Type: model.TxIncome, Category: model.CategoryOther, At: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
		{Amount: 1200, Type: model.TxExpense, Category: model.CategoryHousing, At: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{Amount: 150.5, Type: model.TxExpense, Category: model.CategoryFood, At: time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)},
		{Amount: 49.5, Type: model.TxExpense, Category: model.CategoryFood, At: time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)},
		{Amount: 80, Type: model.TxExpense, Category: model.CategoryFood, At: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if _, err := l.Record(ctx, userID, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	sum, err := l.MonthToDate(ctx, userID)
	if err != nil {
		t.Fatalf("MonthToDate: %v", err)
	}
	if sum.Count != 4 {
		t.Fatalf("Count = %d, want 4", sum.Count)
	}
	if !sum.Income.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("Income = %s, want 3000", sum.Income)
	}
	if !sum.Expense.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("Expense = %s, want 1400", sum.Expense)
	}
	if !sum.Net().Equal(decimal.NewFromInt(1600)) {
		t.Fatalf("Net = %s, want 1600", sum.Net())
	}
	if len(sum.ByCategory) != 2 || sum.ByCategory[0].Category != model.CategoryHousing {
		t.Fatalf("ByCategory = %+v, want HOUSING first of 2", sum.ByCategory)
	}
	if !sum.ByCategory[1].Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("FOOD = %s, want 200", sum.ByCategory[1].Amount)
	}
}
