package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/finbot/internal/alerts"
	"github.com/theirongolddev/finbot/internal/bills"
	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/notify"
	"github.com/theirongolddev/finbot/internal/store"
)

// 2024-05-10 is a Friday.
var now = time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

type outbox struct {
	mu    sync.Mutex
	sent  map[int64]string
	fails map[int64]error
}

func newOutbox() *outbox {
	return &outbox{sent: map[int64]string{}, fails: map[int64]error{}}
}

func (o *outbox) Send(_ context.Context, chatID int64, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.fails[chatID]; err != nil {
		return &notify.DeliveryError{ChatID: chatID, Err: err}
	}
	o.sent[chatID] = text
	return nil
}

type env struct {
	store  *store.Store
	bills  *bills.Tracker
	goals  *goals.Tracker
	box    *outbox
	runner *Runner
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "finbot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	e := &env{store: s, box: newOutbox()}
	e.bills = bills.New(s, time.UTC)
	e.bills.SetClock(func() time.Time { return now })
	e.goals = goals.New(s)
	e.goals.SetClock(func() time.Time { return now })

	ev := alerts.New(s, e.box, nil, alerts.Options{Location: time.UTC})
	ev.SetClock(func() time.Time { return now })
	e.runner = NewRunner(s, e.box, ev, nil, RunnerConfig{Location: time.UTC, Currency: "R$", Workers: 3})
	e.runner.SetClock(func() time.Time { return now })
	return e
}

func (e *env) user(t *testing.T, telegramID int64, name string) int64 {
	t.Helper()
	var id int64
	err := e.store.WithTx(context.Background(), func(tx *store.Tx) error {
		u, _, err := tx.GetOrCreateUser(telegramID, model.Profile{FirstName: name}, now)
		if err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	return id
}

func TestGoalStatus(t *testing.T) {
	tests := []struct {
		p    model.GoalProgress
		want string
	}{
		{model.GoalProgress{DaysLeft: 0, Percent: 95}, StatusOverdue},
		{model.GoalProgress{DaysLeft: 3, Percent: 80}, StatusAlmostThere},
		{model.GoalProgress{DaysLeft: 3, Percent: 50}, StatusOnTrack},
		{model.GoalProgress{DaysLeft: 3, Percent: 49.9}, StatusKeepGoing},
	}
	for _, tt := range tests {
		if got := GoalStatus(tt.p); got != tt.want {
			t.Fatalf("GoalStatus(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestBillDigest(t *testing.T) {
	u := model.User{FirstName: "Ana"}
	due := []model.FixedBill{
		{Name: "Rent", Amount: 1500, DueDay: 15},
		{Name: "Internet", Amount: 99.9, DueDay: 20},
	}
	got := BillDigest(u, due, "R$")
	for _, want := range []string{"Ana", "R$1,599.90", "- Rent: R$1,500.00 (day 15)", "- Internet: R$99.90 (day 20)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("digest missing %q:\n%s", want, got)
		}
	}
}

func TestRunBillReminders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	withDue := e.user(t, 101, "Ana")
	pastOnly := e.user(t, 102, "Bia")
	failing := e.user(t, 103, "Caio")
	muted := e.user(t, 104, "Duda")
	e.user(t, 105, "Eva") // no bills at all

	mustBill := func(uid int64, day int) {
		if _, err := e.bills.Create(ctx, uid, "bill", 100, day, model.CategoryHousing); err != nil {
			t.Fatalf("Create bill: %v", err)
		}
	}
	mustBill(withDue, 5)
	mustBill(withDue, 15)
	mustBill(pastOnly, 2)
	mustBill(failing, 28)
	mustBill(muted, 20)

	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.UpsertPreferences(model.Preferences{UserID: muted, Currency: "R$", NotificationsEnabled: false})
	})
	if err != nil {
		t.Fatalf("prefs: %v", err)
	}
	e.box.fails[103] = errors.New("blocked by user")

	rep := e.runner.RunBillReminders(ctx)
	if rep.Job != JobBills || rep.Users != 5 {
		t.Fatalf("report = %+v, want bills job over 5 users", rep)
	}
	if rep.Notified != 1 || rep.Skipped != 3 || rep.Failed != 1 {
		t.Fatalf("notified/skipped/failed = %d/%d/%d, want 1/3/1", rep.Notified, rep.Skipped, rep.Failed)
	}
	msg, ok := e.box.sent[101]
	if !ok {
		t.Fatal("no reminder sent to chat 101")
	}
	if strings.Contains(msg, "(day 5)") || !strings.Contains(msg, "(day 15)") {
		t.Fatalf("reminder should list only day 15:\n%s", msg)
	}
	if _, ok := e.box.sent[104]; ok {
		t.Fatal("reminder sent to user with notifications disabled")
	}
}

func TestRunGoalUpdatesSkipsCompleted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	open := e.user(t, 201, "Ana")
	done := e.user(t, 202, "Bia")

	if _, err := e.goals.Create(ctx, open, "Trip", 1000, 10, 850); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.goals.Create(ctx, open, "Met", 100, 10, 100); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.goals.Create(ctx, done, "Met", 100, 10, 150); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rep := e.runner.RunGoalUpdates(ctx)
	if rep.Notified != 1 || rep.Skipped != 1 || rep.Failed != 0 {
		t.Fatalf("notified/skipped/failed = %d/%d/%d, want 1/1/0", rep.Notified, rep.Skipped, rep.Failed)
	}
	msg := e.box.sent[201]
	if !strings.Contains(msg, "ALMOST THERE - Trip") {
		t.Fatalf("digest missing status line:\n%s", msg)
	}
	if strings.Contains(msg, "Met") {
		t.Fatalf("digest includes completed goal:\n%s", msg)
	}
	if !strings.Contains(msg, "Needed per day: R$15.00") {
		t.Fatalf("digest missing daily pace:\n%s", msg)
	}
}

func TestRunAlertChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	low := e.user(t, 301, "Ana")
	e.user(t, 302, "Bia")

	ev := e.runner.alerts
	if _, err := ev.Create(ctx, low, model.LowBalanceRule{Threshold: 10}); err != nil {
		t.Fatalf("Create alert: %v", err)
	}

	rep, err := e.runner.Run(ctx, JobAlerts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Notified != 1 || rep.Skipped != 1 {
		t.Fatalf("notified/skipped = %d/%d, want 1/1", rep.Notified, rep.Skipped)
	}
	if _, ok := e.box.sent[301]; !ok {
		t.Fatal("no alert sent to chat 301")
	}

	if _, err := e.runner.Run(ctx, "payroll"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("Run(payroll) err = %v, want ErrUnknownJob", err)
	}
}

func TestRunReportsDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, id := range []int64{401, 402} {
		uid := e.user(t, id, "Ana")
		if _, err := e.bills.Create(ctx, uid, "Rent", 100, 20, model.CategoryHousing); err != nil {
			t.Fatalf("Create bill: %v", err)
		}
	}

	rep := e.runner.RunBillReminders(ctx)
	if rep.Notified != 2 {
		t.Fatalf("notified = %d, want 2", rep.Notified)
	}
	if rep.Duration <= 0 {
		t.Fatalf("Duration = %v, want > 0", rep.Duration)
	}
}

func TestSendTimeoutIsolatesHungChat(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, id := range []int64{501, 502} {
		uid := e.user(t, id, "Ana")
		if _, err := e.bills.Create(ctx, uid, "Rent", 100, 20, model.CategoryHousing); err != nil {
			t.Fatalf("Create bill: %v", err)
		}
	}

	var mu sync.Mutex
	delivered := map[int64]bool{}
	n := notify.Func(func(ctx context.Context, chatID int64, _ string) error {
		if chatID == 501 {
			<-ctx.Done()
			return &notify.DeliveryError{ChatID: chatID, Err: ctx.Err()}
		}
		mu.Lock()
		delivered[chatID] = true
		mu.Unlock()
		return nil
	})
	runner := NewRunner(e.store, n, nil, nil, RunnerConfig{
		Location:    time.UTC,
		Currency:    "R$",
		SendTimeout: 50 * time.Millisecond,
		Workers:     1,
	})
	runner.SetClock(func() time.Time { return now })

	start := time.Now()
	rep := runner.RunBillReminders(ctx)
	elapsed := time.Since(start)

	if rep.Notified != 1 || rep.Failed != 1 {
		t.Fatalf("notified/failed = %d/%d, want 1/1", rep.Notified, rep.Failed)
	}
	if !delivered[502] {
		t.Fatal("chat 502 never received its reminder")
	}
	if elapsed > 2*time.Second {
		t.Fatalf("run took %v, want about the send timeout", elapsed)
	}
}

func TestRunAlertChecksCountsUndeliveredAsFailed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uid := e.user(t, 601, "Ana")

	down := notify.Func(func(_ context.Context, chatID int64, _ string) error {
		return &notify.DeliveryError{ChatID: chatID, Err: errors.New("bot blocked")}
	})
	ev := alerts.New(e.store, down, nil, alerts.Options{Location: time.UTC})
	ev.SetClock(func() time.Time { return now })
	if _, err := ev.Create(ctx, uid, model.LowBalanceRule{Threshold: 10}); err != nil {
		t.Fatalf("Create alert: %v", err)
	}
	runner := NewRunner(e.store, down, ev, nil, RunnerConfig{Location: time.UTC, Workers: 1})
	runner.SetClock(func() time.Time { return now })

	rep := runner.RunAlertChecks(ctx)
	if rep.Notified != 0 || rep.Failed != 1 {
		t.Fatalf("notified/failed = %d/%d, want 0/1", rep.Notified, rep.Failed)
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	e := newEnv(t)
	_, err := New(e.runner, Specs{Bills: "not a cron line"}, time.UTC, nil)
	if !errors.Is(err, ErrJobRegistration) {
		t.Fatalf("New err = %v, want ErrJobRegistration", err)
	}
}

func TestNewRegistersDefaults(t *testing.T) {
	e := newEnv(t)
	var reports []Report
	s, err := New(e.runner, DefaultSpecs(), time.UTC, func(r Report) { reports = append(reports, r) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := s.Registered()
	if len(got) != 2 || got[0] != JobBills || got[1] != JobGoals {
		t.Fatalf("Registered = %v, want [bills goals]", got)
	}

	if _, err := s.Trigger(context.Background(), JobGoals); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if len(reports) != 1 || reports[0].Job != JobGoals {
		t.Fatalf("reports = %+v, want one goals report", reports)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
