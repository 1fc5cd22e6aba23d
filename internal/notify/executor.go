// Package notify runs the per-schedule notification job: fetch open PRs,
// refresh the cached snapshot, send the summary email.
package notify

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/crucial707/pr-notify/internal/email"
	"github.com/crucial707/pr-notify/internal/metrics"
	"github.com/crucial707/pr-notify/internal/models"
)

// ScheduleStore loads the schedule at execution time so the job always sees
// current repositories and credentials.
type ScheduleStore interface {
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
}

// PullRequestCache persists the snapshot a job produced.
type PullRequestCache interface {
	ReplaceForSchedule(ctx context.Context, scheduleID string, prs []models.PullRequest) error
}

// Fetcher lists a repository's open PRs with aggregated check status.
type Fetcher interface {
	FetchOpenPullRequests(ctx context.Context, token, org, repo string) ([]models.PullRequest, error)
}

// Sender delivers one summary email.
type Sender interface {
	Send(to, subject, body string) error
}

// Executor is the body of every scheduled notification job. One Executor is
// shared by all jobs; per-schedule state is loaded fresh on each run.
type Executor struct {
	Schedules        ScheduleStore
	Cache            PullRequestCache
	GitHub           Fetcher
	Email            Sender
	AppURL           string
	FetchConcurrency int
	Logger           *slog.Logger
}

// Run executes the notification job for one schedule. It never returns an
// error: every failure mode is logged and absorbed so one bad run cannot
// damage the scheduler.
//
// Repositories are fetched concurrently; a repository whose fetch fails
// contributes nothing to the summary instead of sinking the run. The cached
// snapshot is only replaced when at least one PR was found, so a pass where
// GitHub was entirely unreachable preserves the previous snapshot.
func (e *Executor) Run(ctx context.Context, scheduleID string) {
	metrics.NotificationJobsRunning.Inc()
	defer metrics.NotificationJobsRunning.Dec()

	log := e.Logger.With("schedule_id", scheduleID)

	sched, err := e.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		log.Error("failed to load schedule", "error", err)
		metrics.NotificationJobsTotal.WithLabelValues("error").Inc()
		return
	}
	if sched == nil {
		// Deleted between scheduling and firing; the next sync pass will
		// remove the job.
		log.Info("schedule no longer exists, skipping run")
		metrics.NotificationJobsTotal.WithLabelValues("skipped").Inc()
		return
	}

	prs := e.fetchAll(ctx, log, sched)

	counts := make(map[string]int)
	for _, pr := range prs {
		counts[pr.Organization+"/"+pr.Repository]++
	}

	if len(prs) == 0 {
		log.Info("no open pull requests, skipping cache update and email")
		metrics.NotificationJobsTotal.WithLabelValues("skipped").Inc()
		return
	}

	// The email only goes out once the snapshot is durably replaced; a failed
	// write fails the run and the next firing retries both.
	if err := e.Cache.ReplaceForSchedule(ctx, scheduleID, prs); err != nil {
		log.Error("failed to update cached pull requests", "error", err)
		metrics.NotificationJobsTotal.WithLabelValues("error").Inc()
		return
	}

	e.sendSummary(log, sched, counts)

	log.Info("notification job complete",
		"open_prs", len(prs), "repositories", len(counts))
	metrics.NotificationJobsTotal.WithLabelValues("completed").Inc()
}

// fetchAll queries every repository of the schedule concurrently, bounded by
// FetchConcurrency. Results keep the schedule's repository order.
func (e *Executor) fetchAll(ctx context.Context, log *slog.Logger, sched *models.Schedule) []models.PullRequest {
	results := make([][]models.PullRequest, len(sched.Repositories))

	g, gctx := errgroup.WithContext(ctx)
	if e.FetchConcurrency > 0 {
		g.SetLimit(e.FetchConcurrency)
	}
	for i, ref := range sched.Repositories {
		i, ref := i, ref
		g.Go(func() error {
			prs, err := e.GitHub.FetchOpenPullRequests(gctx, sched.PAT, ref.Organization, ref.Repository)
			if err != nil {
				log.Error("failed to fetch pull requests",
					"repository", ref.FullName(), "error", err)
				return nil
			}
			results[i] = prs
			return nil
		})
	}
	g.Wait()

	var all []models.PullRequest
	for _, prs := range results {
		all = append(all, prs...)
	}
	return all
}

func (e *Executor) sendSummary(log *slog.Logger, sched *models.Schedule, counts map[string]int) {
	if sched.Email == "" {
		log.Warn("no email address configured, skipping notification")
		metrics.EmailsSentTotal.WithLabelValues("skipped").Inc()
		return
	}

	body := email.FormatSummary(counts, e.AppURL)
	if err := e.Email.Send(sched.Email, email.Subject, body); err != nil {
		log.Error("failed to send summary email", "error", err)
		metrics.EmailsSentTotal.WithLabelValues("error").Inc()
		return
	}
	metrics.EmailsSentTotal.WithLabelValues("sent").Inc()
	log.Info("summary email sent", "to", sched.Email)
}
