package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "finbot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, telegramID int64) *model.User {
	t.Helper()
	var u *model.User
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		var err error
		u, _, err = tx.GetOrCreateUser(telegramID, model.Profile{FirstName: "Ana"}, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	return u
}

func TestGetOrCreateUserIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var first, second *model.User
	var created1, created2 bool
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		first, created1, err = tx.GetOrCreateUser(42, model.Profile{Username: "ana"}, time.Now())
		if err != nil {
			return err
		}
		second, created2, err = tx.GetOrCreateUser(42, model.Profile{Username: "other"}, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if !created1 || created2 {
		t.Fatalf("created = (%v, %v), want (true, false)", created1, created2)
	}
	if first.ID != second.ID {
		t.Fatalf("second ID = %d, want %d", second.ID, first.ID)
	}
	if second.Username != "ana" {
		t.Fatalf("Username = %q, want %q", second.Username, "ana")
	}
	if !second.Active {
		t.Fatal("new user is not active")
	}
}

func TestDeactivateUserHidesFromActiveList(t *testing.T) {
	s := newTestStore(t)
	mustUser(t, s, 1)
	mustUser(t, s, 2)

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		ok, err := tx.DeactivateUser(1)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("DeactivateUser(1) = false, want true")
		}
		ok, err = tx.DeactivateUser(99)
		if err != nil {
			return err
		}
		if ok {
			t.Fatal("DeactivateUser(99) = true, want false")
		}

		users, err := tx.ListActiveUsers()
		if err != nil {
			return err
		}
		if len(users) != 1 || users[0].TelegramID != 2 {
			t.Fatalf("active users = %+v, want only telegram id 2", users)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestAdjustBalance(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 7)

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.SetBalance(u.ID, 100); err != nil {
			return err
		}
		got, err := tx.AdjustBalance(u.ID, -60)
		if err != nil {
			return err
		}
		if got != 40 {
			t.Fatalf("balance = %v, want 40", got)
		}
		if _, err := tx.AdjustBalance(9999, 1); !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("AdjustBalance(missing) err = %v, want ErrNotFound", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 7)
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.SetBalance(u.ID, 500); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v, want boom", err)
	}

	_ = s.WithTx(context.Background(), func(tx *Tx) error {
		got, err := tx.UserByID(u.ID)
		if err != nil {
			t.Fatalf("UserByID: %v", err)
		}
		if got.Balance != 0 {
			t.Fatalf("balance = %v after rollback, want 0", got.Balance)
		}
		return nil
	})
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 7)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic was swallowed")
			}
		}()
		_ = s.WithTx(context.Background(), func(tx *Tx) error {
			if err := tx.SetBalance(u.ID, 500); err != nil {
				return err
			}
			panic("mid-transaction")
		})
	}()

	// The handle must have been released, otherwise this write would block on the lock.
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		got, err := tx.UserByID(u.ID)
		if err != nil {
			return err
		}
		if got.Balance != 0 {
			t.Fatalf("balance = %v after panic, want 0", got.Balance)
		}
		return tx.SetBalance(u.ID, 1)
	})
	if err != nil {
		t.Fatalf("WithTx after panic: %v", err)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 7)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	rows := []model.Transaction{
		{UserID: u.ID, Amount: 10, Type: model.TxExpense, Category: model.CategoryFood, Date: base.AddDate(0, -1, 0)},
		{UserID: u.ID, Amount: 20, Type: model.TxExpense, Category: model.CategoryFood, Date: base},
		{UserID: u.ID, Amount: 30, Type: model.TxExpense, Category: model.CategoryTransport, Date: base.Add(time.Hour)},
		{UserID: u.ID, Amount: 40, Type: model.TxIncome, Category: model.CategoryOther, Date: base.Add(2 * time.Hour)},
	}

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		for i := range rows {
			if err := tx.InsertTransaction(&rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	tests := []struct {
		name   string
		filter model.TxFilter
		want   []float64
	}{
		{"all newest first", model.TxFilter{}, []float64{40, 30, 20, 10}},
		{"since", model.TxFilter{Since: base}, []float64{40, 30, 20}},
		{"until", model.TxFilter{Until: base}, []float64{10}},
		{"category", model.TxFilter{Category: model.CategoryFood}, []float64{20, 10}},
		{"type", model.TxFilter{Type: model.TxIncome}, []float64{40}},
		{"limit", model.TxFilter{Limit: 2}, []float64{40, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []model.Transaction
			err := s.WithTx(context.Background(), func(tx *Tx) error {
				var err error
				got, err = tx.ListTransactions(u.ID, tt.filter)
				return err
			})
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Amount != tt.want[i] {
					t.Fatalf("row %d amount = %v, want %v", i, got[i].Amount, tt.want[i])
				}
			}
		})
	}
}

func TestTransactionAmountMustBePositive(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 7)

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.InsertTransaction(&model.Transaction{
			UserID: u.ID, Amount: -5, Type: model.TxExpense, Category: model.CategoryFood, Date: time.Now(),
		})
	})
	if err == nil {
		t.Fatal("negative amount was accepted by the schema")
	}
}

func TestBillOwnershipScoping(t *testing.T) {
	s := newTestStore(t)
	owner := mustUser(t, s, 1)
	other := mustUser(t, s, 2)

	bill := model.FixedBill{UserID: owner.ID, Name: "Rent", Amount: 1200, DueDay: 5,
		Category: model.CategoryHousing, Active: true, CreatedAt: time.Now()}

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.InsertBill(&bill); err != nil {
			return err
		}
		if _, err := tx.GetBill(bill.ID, other.ID); !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("GetBill(foreign) err = %v, want ErrNotFound", err)
		}
		ok, err := tx.SetBillActive(bill.ID, other.ID, false)
		if err != nil {
			return err
		}
		if ok {
			t.Fatal("SetBillActive(foreign) = true, want false")
		}
		ok, err = tx.SetBillActive(bill.ID, owner.ID, false)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("SetBillActive(owner) = false, want true")
		}

		active, err := tx.ListBills(owner.ID, true)
		if err != nil {
			return err
		}
		if len(active) != 0 {
			t.Fatalf("active bills = %d, want 0", len(active))
		}
		all, err := tx.ListBills(owner.ID, false)
		if err != nil {
			return err
		}
		if len(all) != 1 || all[0].Active {
			t.Fatalf("all bills = %+v, want one inactive bill", all)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestAlertRuleRoundTrip(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 1)
	food := model.CategoryFood

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		limit := model.Alert{UserID: u.ID, Rule: model.LimitRule{Category: &food, Threshold: 1000},
			Active: true, CreatedAt: time.Now()}
		low := model.Alert{UserID: u.ID, Rule: model.LowBalanceRule{Threshold: 50},
			Active: true, CreatedAt: time.Now()}
		if err := tx.InsertAlert(&limit); err != nil {
			return err
		}
		if err := tx.InsertAlert(&low); err != nil {
			return err
		}

		alerts, err := tx.ListAlerts(u.ID, true)
		if err != nil {
			return err
		}
		if len(alerts) != 2 {
			t.Fatalf("alerts = %d, want 2", len(alerts))
		}
		lr, ok := alerts[0].Rule.(model.LimitRule)
		if !ok {
			t.Fatalf("alerts[0].Rule = %T, want LimitRule", alerts[0].Rule)
		}
		if lr.Category == nil || *lr.Category != food || lr.Threshold != 1000 {
			t.Fatalf("limit rule = %+v, want FOOD/1000", lr)
		}
		if _, ok := alerts[1].Rule.(model.LowBalanceRule); !ok {
			t.Fatalf("alerts[1].Rule = %T, want LowBalanceRule", alerts[1].Rule)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestPreferencesDefaultAndUpsert(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 1)
	def := model.Preferences{Currency: "R$", NotificationsEnabled: true}

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		p, err := tx.Preferences(u.ID, def)
		if err != nil {
			return err
		}
		if p.UserID != u.ID || p.Currency != "R$" || !p.NotificationsEnabled {
			t.Fatalf("default prefs = %+v", p)
		}
		if err := tx.UpsertPreferences(model.Preferences{UserID: u.ID, Currency: "$"}); err != nil {
			return err
		}
		p, err = tx.Preferences(u.ID, def)
		if err != nil {
			return err
		}
		if p.Currency != "$" || p.NotificationsEnabled {
			t.Fatalf("saved prefs = %+v, want $ and disabled", p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestAuditRecent(t *testing.T) {
	s := newTestStore(t)
	u := mustUser(t, s, 1)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.Audit(u.ID, "create", "bill", 1, map[string]any{"name": "Rent"}, base); err != nil {
			return err
		}
		if err := tx.Audit(u.ID, "delete", "bill", 1, nil, base.Add(time.Minute)); err != nil {
			return err
		}
		entries, err := tx.RecentAudit(u.ID, 10)
		if err != nil {
			return err
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		if entries[0].Action != "delete" {
			t.Fatalf("entries[0].Action = %q, want delete", entries[0].Action)
		}
		if entries[1].Details["name"] != "Rent" {
			t.Fatalf("details = %v, want name=Rent", entries[1].Details)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}
