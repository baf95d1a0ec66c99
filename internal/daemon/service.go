// Package daemon provides the long-running scheduler service and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/finbot/internal/scheduler"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Logger       *slog.Logger
}

// Jobs is the scheduler surface the daemon drives.
type Jobs interface {
	Start()
	Stop(ctx context.Context) error
	Trigger(ctx context.Context, job string) (scheduler.Report, error)
	Registered() []string
	Next() map[string]time.Time
}

// Pinger checks a backing dependency for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Event is emitted whenever a job run finishes.
type Event struct {
	ID        int64            `json:"id"`
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Report    scheduler.Report `json:"report"`
}

// JobStatus is the per-job part of Status.
type JobStatus struct {
	Name       string            `json:"name"`
	Scheduled  bool              `json:"scheduled"`
	NextRun    time.Time         `json:"next_run,omitempty"`
	Runs       int64             `json:"runs"`
	LastReport *scheduler.Report `json:"last_report,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time   `json:"started_at"`
	Addr            string      `json:"addr"`
	RunCount        int64       `json:"run_count"`
	LastRunAt       time.Time   `json:"last_run_at"`
	LastError       string      `json:"last_error,omitempty"`
	Jobs            []JobStatus `json:"jobs"`
	EventCount      int         `json:"event_count"`
	SubscriberCount int         `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *slog.Logger
	db  Pinger

	mu          sync.RWMutex
	jobs        Jobs
	startedAt   time.Time
	lastRunAt   time.Time
	runCount    int64
	lastError   string
	runs        map[string]int64
	lastReports map[string]scheduler.Report
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config. db may be nil.
func New(cfg Config, db Pinger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:         cfg,
		log:         logger,
		db:          db,
		startedAt:   time.Now(),
		runs:        make(map[string]int64),
		lastReports: make(map[string]scheduler.Report),
		subs:        make(map[int]chan Event),
	}
}

// RecordReport stores a finished run and fans it out to stream subscribers.
// It is the scheduler's report callback.
func (s *Service) RecordReport(rep scheduler.Report) {
	s.mu.Lock()
	s.runCount++
	s.runs[rep.Job]++
	s.lastReports[rep.Job] = rep
	s.lastRunAt = rep.StartedAt
	switch {
	case rep.Err != "":
		s.lastError = rep.Err
	case rep.Failed > 0:
		s.lastError = fmt.Sprintf("%s: %d of %d users failed", rep.Job, rep.Failed, rep.Users)
	default:
		s.lastError = ""
	}
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      "job_report",
		Timestamp: time.Now(),
		Report:    rep,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

// Handler builds the HTTP API around jobs.
func (s *Service) Handler(jobs Jobs) http.Handler {
	s.mu.Lock()
	s.jobs = jobs
	s.mu.Unlock()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.With(middleware.Timeout(10*time.Second)).Get("/status", s.handleStatus)
		r.With(middleware.Timeout(10*time.Second)).Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
		r.Post("/jobs/{job}/run", s.handleRunJob)
	})
	return r
}

// Run starts the scheduler and the HTTP endpoints until ctx is canceled.
func (s *Service) Run(ctx context.Context, jobs Jobs) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(jobs),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	jobs.Start()
	s.log.Info("daemon started", "addr", s.cfg.Addr, "jobs", jobs.Registered())

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("daemon http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := jobs.Stop(shutdownCtx); err != nil {
		s.log.Warn("scheduler did not stop cleanly", "err", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		RunCount:        s.runCount,
		LastRunAt:       s.lastRunAt,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}

	scheduled := map[string]bool{}
	var next map[string]time.Time
	if s.jobs != nil {
		for _, name := range s.jobs.Registered() {
			scheduled[name] = true
		}
		next = s.jobs.Next()
	}
	for _, name := range scheduler.Jobs {
		js := JobStatus{Name: name, Scheduled: scheduled[name], NextRun: next[name], Runs: s.runs[name]}
		if rep, ok := s.lastReports[name]; ok {
			js.LastReport = &rep
		}
		st.Jobs = append(st.Jobs, js)
	}
	return st
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleRunJob(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()
	if jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not running")
		return
	}

	name := chi.URLParam(r, "job")
	rep, err := jobs.Trigger(r.Context(), name)
	if errors.Is(err, scheduler.ErrUnknownJob) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("manual job run", "job", name, "run_id", rep.RunID,
		"request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, rep)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Replay the latest run so a new client has something to show.
	s.mu.RLock()
	var last *Event
	if n := len(s.events); n > 0 {
		ev := s.events[n-1]
		last = &ev
	}
	s.mu.RUnlock()
	if last != nil {
		writeSSE(w, *last)
	} else {
		_, _ = fmt.Fprint(w, ": connected\n\n")
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
