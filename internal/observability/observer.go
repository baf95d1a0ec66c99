// Package observability carries the logging and metrics hooks shared by the
// alert evaluator, the notifiers and the scheduler.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/theirongolddev/finbot/internal/model"
)

// Observer receives the events the core components emit. Implementations must be
// safe for concurrent use.
type Observer interface {
	AlertTriggered(userID int64, t model.Trigger)
	DeliverySucceeded(chatID int64)
	DeliveryFailed(chatID int64, err error)
	JobFinished(job string, d time.Duration, users, failed int)
	UserFailed(job string, userID int64, err error)
	Fatal(msg string, err error)
}

// Recorder logs through slog and updates the Prometheus collectors.
type Recorder struct {
	log *slog.Logger
}

// NewRecorder wraps logger. A nil logger discards output.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{log: logger}
}

// Logger exposes the underlying logger.
func (r *Recorder) Logger() *slog.Logger { return r.log }

// AlertTriggered counts a fired alert by type and logs its values.
func (r *Recorder) AlertTriggered(userID int64, t model.Trigger) {
	AlertsTriggered.WithLabelValues(t.Type).Inc()
	attrs := []any{"user_id", userID, "alert_id", t.AlertID, "type", t.Type,
		"current", t.Current, "threshold", t.Threshold}
	if t.Category != nil {
		attrs = append(attrs, "category", string(*t.Category))
	}
	r.log.Info("alert triggered", attrs...)
}

// DeliverySucceeded counts a notification that reached its chat.
func (r *Recorder) DeliverySucceeded(chatID int64) {
	Notifications.WithLabelValues("ok").Inc()
	r.log.Debug("notification delivered", "chat_id", chatID)
}

// DeliveryFailed counts a notification that could not be sent.
func (r *Recorder) DeliveryFailed(chatID int64, err error) {
	Notifications.WithLabelValues("error").Inc()
	r.log.Warn("notification failed", "chat_id", chatID, "err", err)
}

// JobFinished records one scheduled run and how long it took.
func (r *Recorder) JobFinished(job string, d time.Duration, users, failed int) {
	JobRuns.WithLabelValues(job).Inc()
	JobDuration.WithLabelValues(job).Observe(d.Seconds())
	r.log.Info("job finished", "job", job, "duration", d.Round(time.Millisecond),
		"users", users, "failed", failed)
}

// UserFailed counts a user a job could not process.
func (r *Recorder) UserFailed(job string, userID int64, err error) {
	JobUserFailures.WithLabelValues(job).Inc()
	r.log.Error("user processing failed", "job", job, "user_id", userID, "err", err)
}

// Fatal logs an error that stops the daemon.
func (r *Recorder) Fatal(msg string, err error) {
	r.log.Error(msg, "err", err)
}

// Nop discards every event.
type Nop struct{}

func (Nop) AlertTriggered(int64, model.Trigger) {}
func (Nop) DeliverySucceeded(int64) {}
func (Nop) DeliveryFailed(int64, error) {}
func (Nop) JobFinished(string, time.Duration, int, int) {}
func (Nop) UserFailed(string, int64, error) {}
func (Nop) Fatal(string, error) {}

// NewLogger builds a slog logger from the configured level and format.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "", "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
