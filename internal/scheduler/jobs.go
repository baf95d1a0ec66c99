package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/finbot/internal/alerts"
	"github.com/theirongolddev/finbot/internal/bills"
	"github.com/theirongolddev/finbot/internal/goals"
	"github.com/theirongolddev/finbot/internal/model"
	"github.com/theirongolddev/finbot/internal/notify"
	"github.com/theirongolddev/finbot/internal/observability"
	"github.com/theirongolddev/finbot/internal/store"
)

// Job names.
const (
	JobBills  = "bills"
	JobGoals  = "goals"
	JobAlerts = "alerts"
)

// Jobs lists every job name in registration order.
var Jobs = []string{JobBills, JobGoals, JobAlerts}

// ErrUnknownJob is returned by Run for a name not in Jobs.
var ErrUnknownJob = errors.New("unknown job")

// errSkip marks a user with nothing to report.
var errSkip = errors.New("nothing to report")

// errUndelivered marks a user whose alerts fired but none reached the chat.
var errUndelivered = errors.New("alert delivery failed")

// Report summarizes one job run.
type Report struct {
	RunID     uuid.UUID     `json:"run_id"`
	Job       string        `json:"job"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Users     int           `json:"users"`
	Notified  int           `json:"notified"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Err       string        `json:"error,omitempty"`
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Location    *time.Location
	Currency    string
	SendTimeout time.Duration
	Workers     int
}

// Runner executes the per-user jobs. Each user gets its own transaction; no state
// is shared between runs.
type Runner struct {
	store    *store.Store
	notifier notify.Notifier
	alerts   *alerts.Evaluator
	obs      observability.Observer
	cfg      RunnerConfig
	now      func() time.Time
}

// NewRunner creates a Runner. evaluator may be nil when the alerts job is unused.
func NewRunner(s *store.Store, n notify.Notifier, evaluator *alerts.Evaluator, obs observability.Observer, cfg RunnerConfig) *Runner {
	if obs == nil {
		obs = observability.Nop{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Currency == "" {
		cfg.Currency = "R$"
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{store: s, notifier: n, alerts: evaluator, obs: obs, cfg: cfg, now: time.Now}
}

// SetClock replaces the time source.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes the named job.
func (r *Runner) Run(ctx context.Context, job string) (Report, error) {
	switch job {
	case JobBills:
		return r.RunBillReminders(ctx), nil
	case JobGoals:
		return r.RunGoalUpdates(ctx), nil
	case JobAlerts:
		return r.RunAlertChecks(ctx), nil
	}
	return Report{}, fmt.Errorf("%w: %q", ErrUnknownJob, job)
}

// RunBillReminders sends each active user the bills still due this month.
func (r *Runner) RunBillReminders(ctx context.Context) Report {
	return r.run(ctx, JobBills, func(ctx context.Context, u model.User) error {
		var (
			due   []model.FixedBill
			prefs model.Preferences
		)
		err := r.store.WithTx(ctx, func(tx *store.Tx) error {
			var err error
			prefs, err = tx.Preferences(u.ID, r.defaultPrefs())
			if err != nil || !prefs.NotificationsEnabled {
				return err
			}
			due, err = bills.DueSoonIn(tx, u.ID, r.now().In(r.cfg.Location))
			return err
		})
		if err != nil {
			return err
		}
		if !prefs.NotificationsEnabled || len(due) == 0 {
			return errSkip
		}
		return r.send(ctx, u, BillDigest(u, due, prefs.Currency))
	})
}

// RunGoalUpdates sends each active user the progress of their open goals.
func (r *Runner) RunGoalUpdates(ctx context.Context) Report {
	return r.run(ctx, JobGoals, func(ctx context.Context, u model.User) error {
		var (
			open  []goals.View
			prefs model.Preferences
		)
		err := r.store.WithTx(ctx, func(tx *store.Tx) error {
			var err error
			prefs, err = tx.Preferences(u.ID, r.defaultPrefs())
			if err != nil || !prefs.NotificationsEnabled {
				return err
			}
			views, err := goals.ListIn(tx, u.ID, r.now())
			if err != nil {
				return err
			}
			open = openGoals(views)
			return nil
		})
		if err != nil {
			return err
		}
		if !prefs.NotificationsEnabled || len(open) == 0 {
			return errSkip
		}
		return r.send(ctx, u, GoalDigest(u, open, prefs.Currency))
	})
}

// RunAlertChecks evaluates every active user's alerts. The evaluator delivers
// its own notifications; a user counts as notified only when at least one of
// them went out.
func (r *Runner) RunAlertChecks(ctx context.Context) Report {
	return r.run(ctx, JobAlerts, func(ctx context.Context, u model.User) error {
		if r.alerts == nil {
			return errSkip
		}
		triggers, err := r.alerts.Evaluate(ctx, u.ID)
		if err != nil {
			return err
		}
		if len(triggers) == 0 {
			return errSkip
		}
		for _, t := range triggers {
			if t.Delivered {
				return nil
			}
		}
		return fmt.Errorf("%w: %d alerts not delivered", errUndelivered, len(triggers))
	})
}

func (r *Runner) defaultPrefs() model.Preferences {
	return model.Preferences{Currency: r.cfg.Currency, NotificationsEnabled: true}
}

func (r *Runner) send(ctx context.Context, u model.User, text string) error {
	if r.notifier == nil {
		return errSkip
	}
	sendCtx, cancel := context.WithTimeout(ctx, r.cfg.SendTimeout)
	defer cancel()

	if err := r.notifier.Send(sendCtx, u.TelegramID, text); err != nil {
		r.obs.DeliveryFailed(u.TelegramID, err)
		return err
	}
	r.obs.DeliverySucceeded(u.TelegramID)
	return nil
}

type userFunc func(ctx context.Context, u model.User) error

// run lists active users and fans the work out over a bounded worker pool.
// A failing user is counted and logged; the others still run.
func (r *Runner) run(ctx context.Context, job string, fn userFunc) (rep Report) {
	rep = Report{RunID: uuid.New(), Job: job, StartedAt: r.now()}
	start := time.Now()
	defer func() {
		rep.Duration = time.Since(start)
		r.obs.JobFinished(job, rep.Duration, rep.Users, rep.Failed)
	}()

	var users []model.User
	err := r.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		users, err = tx.ListActiveUsers()
		return err
	})
	if err != nil {
		rep.Err = err.Error()
		r.obs.UserFailed(job, 0, fmt.Errorf("listing users: %w", err))
		return rep
	}
	rep.Users = len(users)
	if len(users) == 0 {
		return rep
	}

	numWorkers := r.cfg.Workers
	if numWorkers > len(users) {
		numWorkers = len(users)
	}

	work := make(chan int, len(users))
	results := make([]error, len(users))
	var wg sync.WaitGroup

	for i := range users {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = r.safeCall(ctx, fn, users[idx])
			}
		}()
	}
	wg.Wait()

	for i, err := range results {
		switch {
		case err == nil:
			rep.Notified++
		case errors.Is(err, errSkip):
			rep.Skipped++
		default:
			rep.Failed++
			r.obs.UserFailed(job, users[i].ID, err)
		}
	}
	return rep
}

// safeCall turns a panic in one user's unit into an error for that user.
func (r *Runner) safeCall(ctx context.Context, fn userFunc, u model.User) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, u)
}
