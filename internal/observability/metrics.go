package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AlertsTriggered counts alert breaches by rule type.
var AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finbot",
	Subsystem: "alerts",
	Name:      "triggered_total",
	Help:      "Total alert triggers by rule type.",
}, []string{"type"})

// Notifications counts delivery attempts by outcome.
var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finbot",
	Subsystem: "notify",
	Name:      "notifications_total",
	Help:      "Total chat notifications by result (ok, error).",
}, []string{"result"})

// JobRuns counts scheduler job executions.
var JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finbot",
	Subsystem: "scheduler",
	Name:      "job_runs_total",
	Help:      "Total scheduled job runs.",
}, []string{"job"})

// JobDuration tracks wall time per job run.
var JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "finbot",
	Subsystem: "scheduler",
	Name:      "job_duration_seconds",
	Help:      "Scheduled job duration in seconds.",
	Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
}, []string{"job"})

// JobUserFailures counts users whose processing failed inside a job run.
var JobUserFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "finbot",
	Subsystem: "scheduler",
	Name:      "job_user_failures_total",
	Help:      "Total per-user failures inside scheduled jobs.",
}, []string{"job"})
