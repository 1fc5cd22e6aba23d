package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/crucial707/pr-notify/internal/metrics"
	"github.com/crucial707/pr-notify/internal/models"
)

// ScheduleSource provides the persisted schedules the job set must converge to.
type ScheduleSource interface {
	ListActive(ctx context.Context) ([]models.Schedule, error)
	ListAllIDs(ctx context.Context) ([]string, error)
}

// JobRunner executes one notification job for a schedule.
type JobRunner interface {
	Run(ctx context.Context, scheduleID string)
}

// Reconciler converges the scheduler's job set with the active schedules in
// the store. After a successful pass the set of job ids equals the set of
// active schedule ids.
type Reconciler struct {
	Scheduler *Scheduler
	Source    ScheduleSource
	Runner    JobRunner
	Logger    *slog.Logger
}

// Sync runs one reconciliation pass. Every active schedule is re-registered
// unconditionally so edited cron expressions take effect, then jobs with no
// matching active schedule are removed. A schedule whose expression does not
// parse is logged and skipped; it does not abort the pass.
func (r *Reconciler) Sync(ctx context.Context) error {
	active, err := r.Source.ListActive(ctx)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("error").Inc()
		return err
	}

	activeIDs := make(map[string]bool, len(active))
	for _, s := range active {
		id := s.ID
		if err := r.Scheduler.Upsert(id, s.CronExpr, func() {
			// Job firings outlive the sync pass that registered them.
			r.Runner.Run(context.Background(), id)
		}); err != nil {
			metrics.SyncScheduleErrors.Inc()
			r.Logger.Error("failed to schedule job, skipping",
				"schedule_id", id, "cron", s.CronExpr, "error", err)
			continue
		}
		activeIDs[id] = true
	}

	// A job for a schedule that is no longer active gets removed. Whether the
	// schedule was deleted or merely deactivated only changes the log line.
	var orphans []string
	for _, id := range r.Scheduler.JobIDs() {
		if !activeIDs[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		known := r.knownIDs(ctx)
		for _, id := range orphans {
			r.Scheduler.Remove(id)
			if known == nil || known[id] {
				r.Logger.Info("removed job for deactivated schedule", "schedule_id", id)
			} else {
				r.Logger.Info("removed job for deleted schedule", "schedule_id", id)
			}
		}
	}

	metrics.SyncRunsTotal.WithLabelValues("ok").Inc()
	r.Logger.Debug("schedule sync complete",
		"active", len(activeIDs), "jobs", len(r.Scheduler.JobIDs()))
	return nil
}

// knownIDs returns the set of all schedule ids, or nil if the lookup failed.
// The lookup only refines log wording, so its failure is not a sync failure.
func (r *Reconciler) knownIDs(ctx context.Context) map[string]bool {
	ids, err := r.Source.ListAllIDs(ctx)
	if err != nil {
		r.Logger.Warn("failed to list schedule ids", "error", err)
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Poll re-runs Sync on the given interval until ctx is canceled. Sync errors
// are logged; the loop keeps going so a transient DB outage heals itself.
func (r *Reconciler) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Sync(ctx); err != nil {
				r.Logger.Error("schedule sync failed", "error", err)
			}
		}
	}
}
