package tui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/finbot/internal/alerts"
	"github.com/theirongolddev/finbot/internal/bills"
	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/ledger"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/notify"
	"github.com/theirongolddev/finbot/internal/store"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seeded(t *testing.T) Sources {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "finbot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	var uid int64
	err = s.WithTx(ctx, func(tx *store.Tx) error {
		u, _, err := tx.GetOrCreateUser(42, model.Profile{FirstName: "Ana"}, now)
		if err != nil {
			return err
		}
		uid = u.ID
		return tx.SetBalance(uid, 80)
	})
	if err != nil {
		t.Fatalf("user: %v", err)
	}

	l := ledger.New(s, time.UTC)
	l.SetClock(func() time.Time { return now })
	for _, e := range []ledger.Entry{
		{Amount: 3000, Type: model.TxIncome, Category: model.CategoryOther, At: now.AddDate(0, 0, -8)},
		{Amount: 120, Type: model.TxExpense, Category: model.CategoryFood, At: now.AddDate(0, 0, -2)},
		{Amount: 30, Type: model.TxExpense, Category: model.CategoryFood, At: now},
		{Amount: 45, Type: model.TxExpense, Category: model.CategoryTransport, At: now.AddDate(0, -1, 0)},
	} {
		if _, err := l.Record(ctx, uid, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	bt := bills.New(s, time.UTC)
	bt.SetClock(func() time.Time { return now })
	for _, day := range []int{5, 15} {
		if _, err := bt.Create(ctx, uid, "bill", 100, day, model.CategoryHousing); err != nil {
			t.Fatalf("bill: %v", err)
		}
	}

	gt := goals.New(s)
	gt.SetClock(func() time.Time { return now })
	if _, err := gt.Create(ctx, uid, "Trip", 1000, 10, 250); err != nil {
		t.Fatalf("goal: %v", err)
	}

	ev := alerts.New(s, notify.NewWriter(io.Discard), nil, alerts.Options{})
	food := model.CategoryFood
	if _, err := ev.Create(ctx, uid, model.LimitRule{Category: &food, Threshold: 200}); err != nil {
		t.Fatalf("alert: %v", err)
	}
	if _, err := ev.Create(ctx, uid, model.LowBalanceRule{Threshold: 100}); err != nil {
		t.Fatalf("alert: %v", err)
	}

	return Sources{Store: s, Ledger: l, Location: time.UTC, Currency: "R$", Now: func() time.Time { return now }}
}

func TestLoadSnapshot(t *testing.T) {
	src := seeded(t)
	snap, err := Load(context.Background(), src, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if snap.User.FirstName != "Ana" || snap.Currency != "R$" {
		t.Fatalf("user/currency = %q/%q", snap.User.FirstName, snap.Currency)
	}
	if got := snap.Month.Expense.String(); got != "150" {
		t.Fatalf("month expense = %s, want 150", got)
	}
	if len(snap.Daily) != 10 || snap.Daily[7] != 120 || snap.Daily[9] != 30 {
		t.Fatalf("daily = %v", snap.Daily)
	}
	if len(snap.Bills) != 2 || len(snap.DueSoon) != 1 || snap.DueSoon[0].DueDay != 15 {
		t.Fatalf("bills = %d, due soon = %+v", len(snap.Bills), snap.DueSoon)
	}
	if len(snap.Goals) != 1 || snap.Goals[0].Progress.Percent != 25 {
		t.Fatalf("goals = %+v", snap.Goals)
	}
	if len(snap.Alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(snap.Alerts))
	}
	if got := snap.Alerts[0].Current; got != 150 {
		t.Fatalf("limit usage = %v, want 150", got)
	}
	if got := snap.Alerts[0].Percent(); got != 75 {
		t.Fatalf("limit percent = %v, want 75", got)
	}
	if got := snap.Alerts[1].Percent(); got != 125 {
		t.Fatalf("low balance percent = %v, want 125", got)
	}
	if len(snap.Recent) != 3 {
		t.Fatalf("recent = %d, want 3 this month", len(snap.Recent))
	}
}

func TestLoadUnknownUser(t *testing.T) {
	src := seeded(t)
	if _, err := Load(context.Background(), src, 999); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Load err = %v, want ErrNotFound", err)
	}
}

func TestAppRendersEveryTab(t *testing.T) {
	src := seeded(t)
	snap, err := Load(context.Background(), src, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var m tea.Model = NewApp(src, 42, 0)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(DataLoadedMsg{Snap: snap})

	wants := map[rune]string{
		'o': "Spending by category",
		'b': "Still due this month",
		'g': "Trip",
		'a': "Low balance",
	}
	for key, want := range wants {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
		if view := m.View(); !strings.Contains(view, want) {
			t.Fatalf("tab %q missing %q:\n%s", key, want, view)
		}
	}
}

func TestAppShowsLoadError(t *testing.T) {
	var m tea.Model = NewApp(Sources{}, 1, 0)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(DataLoadedMsg{Err: errors.New("disk gone")})
	if view := m.View(); !strings.Contains(view, "disk gone") {
		t.Fatalf("view missing error:\n%s", view)
	}
}

func TestTabAtX(t *testing.T) {
	a := App{activeTab: 1}
	if got := a.tabAtX(0); got != 0 {
		t.Fatalf("tabAtX(0) = %d, want 0", got)
	}
	if got := a.tabAtX(1000); got != -1 {
		t.Fatalf("tabAtX(1000) = %d, want -1", got)
	}
}

func TestSetupValidators(t *testing.T) {
	if validateCurrency("  ") == nil {
		t.Fatal("blank currency accepted")
	}
	if validateTimezone("Mars/Base") == nil {
		t.Fatal("unknown timezone accepted")
	}
	if err := validateTimezone("UTC"); err != nil {
		t.Fatalf("UTC rejected: %v", err)
	}
	if err := validateSpec(""); err != nil {
		t.Fatalf("empty spec rejected: %v", err)
	}
	if err := validateSpec("0 10 * * *"); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	if validateSpec("every day") == nil {
		t.Fatal("bad spec accepted")
	}
}
