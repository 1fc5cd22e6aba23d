// Package scheduler keeps a live cron job set converged with the notification
// schedules stored in the database.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/pr-notify/internal/metrics"
)

// JobInfo describes one scheduled job.
type JobInfo struct {
	ID   string
	Spec string
	Next time.Time
}

// Scheduler wraps a cron runner with jobs keyed by schedule id. Every job is
// wrapped so that a firing which overlaps a still-running instance of the
// same job is skipped, and a panicking job is recovered and logged instead of
// taking the process down.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]entry
	logger  *slog.Logger
}

type entry struct {
	id   cron.EntryID
	spec string
}

// New builds a Scheduler in the given timezone. Cron expressions use the
// standard five fields (minute hour dom month dow).
func New(logger *slog.Logger, timezone string) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{
		cron:    c,
		entries: make(map[string]entry),
		logger:  logger,
	}, nil
}

// Upsert registers cmd under id with the given cron spec, replacing any
// existing registration. Replacement is unconditional so an edited expression
// always takes effect. Returns an error if spec does not parse; in that case
// any previous registration for id is left removed.
func (s *Scheduler) Upsert(id, spec string, cmd func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old.id)
		delete(s.entries, id)
	}

	entryID, err := s.cron.AddFunc(spec, cmd)
	if err != nil {
		metrics.JobsScheduled.Set(float64(len(s.entries)))
		return err
	}
	s.entries[id] = entry{id: entryID, spec: spec}
	metrics.JobsScheduled.Set(float64(len(s.entries)))
	return nil
}

// Remove unregisters the job for id. Returns false if no such job exists.
func (s *Scheduler) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cron.Remove(e.id)
	delete(s.entries, id)
	metrics.JobsScheduled.Set(float64(len(s.entries)))
	return true
}

// JobIDs returns the ids of all registered jobs, sorted.
func (s *Scheduler) JobIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the job registered under id, if any. Next is the zero time
// until the scheduler has been started.
func (s *Scheduler) Lookup(id string) (JobInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return JobInfo{}, false
	}
	return JobInfo{ID: id, Spec: e.spec, Next: s.cron.Entry(e.id).Next}, true
}

// Start begins firing jobs at their scheduled times.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops firing and waits for running jobs to finish, or for ctx to
// expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
