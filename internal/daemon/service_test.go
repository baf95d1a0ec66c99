package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/finbot/internal/scheduler"
)

type fakeJobs struct {
	onReport func(scheduler.Report)
	started  bool
	stopped  bool
}

func (f *fakeJobs) Start() { f.started = true }

func (f *fakeJobs) Stop(context.Context) error {
	f.stopped = true
	return nil
}

func (f *fakeJobs) Trigger(_ context.Context, job string) (scheduler.Report, error) {
	switch job {
	case scheduler.JobBills, scheduler.JobGoals, scheduler.JobAlerts:
	default:
		return scheduler.Report{}, fmt.Errorf("%w: %q", scheduler.ErrUnknownJob, job)
	}
	rep := scheduler.Report{RunID: uuid.New(), Job: job, StartedAt: time.Now(), Users: 3, Notified: 2, Skipped: 1}
	if f.onReport != nil {
		f.onReport(rep)
	}
	return rep, nil
}

func (f *fakeJobs) Registered() []string { return []string{scheduler.JobBills, scheduler.JobGoals} }

func (f *fakeJobs) Next() map[string]time.Time {
	return map[string]time.Time{scheduler.JobBills: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)}
}

type pingErr struct{ err error }

func (p pingErr) Ping(context.Context) error { return p.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, db Pinger) (*Service, *fakeJobs, *httptest.Server) {
	t.Helper()
	s := New(Config{EventsBuffer: 10, Logger: quietLogger()}, db)
	jobs := &fakeJobs{onReport: s.RecordReport}
	srv := httptest.NewServer(s.Handler(jobs))
	t.Cleanup(srv.Close)
	return s, jobs, srv
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, Logger: quietLogger()}, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestRecordReportTracksFailures(t *testing.T) {
	s := New(Config{Logger: quietLogger()}, nil)

	s.RecordReport(scheduler.Report{Job: scheduler.JobBills, Users: 4, Failed: 1})
	st := s.snapshotStatus()
	if st.RunCount != 1 {
		t.Fatalf("RunCount = %d, want 1", st.RunCount)
	}
	if !strings.Contains(st.LastError, "1 of 4") {
		t.Fatalf("LastError = %q, want failure summary", st.LastError)
	}

	s.RecordReport(scheduler.Report{Job: scheduler.JobBills, Users: 4})
	st = s.snapshotStatus()
	if st.LastError != "" {
		t.Fatalf("LastError = %q after clean run, want empty", st.LastError)
	}
	if st.Jobs[0].Runs != 2 || st.Jobs[0].LastReport == nil {
		t.Fatalf("bills job status = %+v, want 2 runs with last report", st.Jobs[0])
	}
}

func TestRunJobEndpoint(t *testing.T) {
	s, _, srv := newTestService(t, nil)

	resp, err := http.Post(srv.URL+"/v1/jobs/bills/run", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var rep scheduler.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Job != scheduler.JobBills || rep.Notified != 2 {
		t.Fatalf("report = %+v", rep)
	}

	st := s.snapshotStatus()
	if st.RunCount != 1 || st.EventCount != 1 {
		t.Fatalf("status after run = %+v, want one run and one event", st)
	}

	resp2, err := http.Post(srv.URL+"/v1/jobs/payroll/run", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	_ = resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown job status = %d, want 404", resp2.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, _, srv := newTestService(t, nil)

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(st.Jobs) != len(scheduler.Jobs) {
		t.Fatalf("jobs = %d, want %d", len(st.Jobs), len(scheduler.Jobs))
	}
	if !st.Jobs[0].Scheduled || st.Jobs[0].NextRun.IsZero() {
		t.Fatalf("bills job = %+v, want scheduled with next run", st.Jobs[0])
	}
	if st.Jobs[2].Scheduled {
		t.Fatal("alerts job reported as scheduled")
	}
}

func TestHealthz(t *testing.T) {
	_, _, ok := newTestService(t, pingErr{})
	resp, err := http.Get(ok.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthy status = %d, want 200", resp.StatusCode)
	}

	_, _, bad := newTestService(t, pingErr{err: errors.New("disk gone")})
	resp, err = http.Get(bad.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy status = %d, want 503", resp.StatusCode)
	}
}

func TestStreamDeliversReports(t *testing.T) {
	s, jobs, srv := newTestService(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)
	// Wait for the connect comment so the subscriber is registered.
	if line, err := reader.ReadString('\n'); err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("first line = %q, %v", line, err)
	}

	waitForSubscribers(t, s, 1)
	if _, err := jobs.Trigger(ctx, scheduler.JobGoals); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			var ev Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if ev.Type != "job_report" || ev.Report.Job != scheduler.JobGoals {
				t.Fatalf("event = %+v", ev)
			}
			return
		}
	}
}

func waitForSubscribers(t *testing.T, s *Service, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.RLock()
		got := len(s.subs)
		s.mu.RUnlock()
		if got >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("subscribers never reached %d", n)
}

func TestRunStopsJobsOnCancel(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Logger: quietLogger()}, nil)
	jobs := &fakeJobs{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, jobs) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !jobs.started || !jobs.stopped {
		t.Fatalf("jobs started=%v stopped=%v, want both", jobs.started, jobs.stopped)
	}
}
