// Package scheduler runs the periodic bill reminder, goal progress and alert jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrJobRegistration means a job could not be added to the cron engine. It is a
// configuration error; callers should abort startup.
var ErrJobRegistration = errors.New("registering scheduled job")

// Specs holds the cron expressions per job. An empty spec disables the job.
type Specs struct {
	Bills  string
	Goals  string
	Alerts string
}

// DefaultSpecs returns daily bill reminders at 10:00 and weekly goal updates on
// Monday at 09:00. The alert sweep is off.
func DefaultSpecs() Specs {
	return Specs{
		Bills: "0 10 * * *",
		Goals: "0 9 * * 1",
	}
}

// ReportFunc receives every finished run.
type ReportFunc func(Report)

// Scheduler binds a Runner to a cron engine.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	onReport ReportFunc
	entries  map[string]cron.EntryID
	ctx      context.Context
	cancel   context.CancelFunc
}

// New registers the enabled jobs. Any invalid spec fails with ErrJobRegistration.
func New(runner *Runner, specs Specs, loc *time.Location, onReport ReportFunc) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		runner:   runner,
		onReport: onReport,
		entries:  make(map[string]cron.EntryID),
		ctx:      ctx,
		cancel:   cancel,
	}

	for _, j := range []struct{ name, spec string }{
		{JobBills, specs.Bills},
		{JobGoals, specs.Goals},
		{JobAlerts, specs.Alerts},
	} {
		if j.spec == "" {
			continue
		}
		name := j.name
		id, err := s.cron.AddFunc(j.spec, func() { s.Trigger(s.ctx, name) })
		if err != nil {
			cancel()
			return nil, fmt.Errorf("%w %s (%q): %v", ErrJobRegistration, name, j.spec, err)
		}
		s.entries[name] = id
	}
	return s, nil
}

// Trigger runs a job now, outside the cron cadence, and publishes its report.
func (s *Scheduler) Trigger(ctx context.Context, job string) (Report, error) {
	rep, err := s.runner.Run(ctx, job)
	if err != nil {
		return rep, err
	}
	if s.onReport != nil {
		s.onReport(rep)
	}
	return rep, nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron engine, cancels in-flight runs and waits for them to exit
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next fire time per registered job.
func (s *Scheduler) Next() map[string]time.Time {
	out := make(map[string]time.Time, len(s.entries))
	for name, id := range s.entries {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// Registered reports the names of the enabled jobs.
func (s *Scheduler) Registered() []string {
	var out []string
	for _, name := range Jobs {
		if _, ok := s.entries[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
