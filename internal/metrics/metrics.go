package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SyncRunsTotal counts reconciliation passes by outcome (ok, error).
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_sync_runs_total",
			Help: "Total number of schedule reconciliation passes by outcome",
		},
		[]string{"outcome"},
	)

	// SyncScheduleErrors counts schedules skipped during a pass (bad cron, add failure).
	SyncScheduleErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "schedule_sync_schedule_errors_total",
			Help: "Total number of schedules that could not be scheduled during sync",
		},
	)

	// JobsScheduled is the number of jobs currently registered with the scheduler.
	JobsScheduled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_jobs",
			Help: "Number of notification jobs currently scheduled",
		},
	)

	// NotificationJobsRunning is the number of notification jobs executing right now.
	NotificationJobsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_jobs_running",
			Help: "Number of notification jobs currently running",
		},
	)

	// NotificationJobsTotal counts notification job completions by status
	// (completed, skipped, error).
	NotificationJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_jobs_total",
			Help: "Total number of notification jobs finished by status",
		},
		[]string{"status"},
	)

	// GitHubRequestsTotal counts outbound GitHub API calls by kind (pulls,
	// check_runs) and outcome (ok, error).
	GitHubRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_requests_total",
			Help: "Total number of GitHub API requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// EmailsSentTotal counts summary email attempts by status (sent, error, skipped).
	EmailsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of summary email attempts by status",
		},
		[]string{"status"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			SyncRunsTotal, SyncScheduleErrors, JobsScheduled,
			NotificationJobsRunning, NotificationJobsTotal,
			GitHubRequestsTotal, EmailsSentTotal,
		)
	})
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}
