// Package scheduler runs digest jobs on cron schedules for watch mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled task.
type Job struct {
	Name     string
	Schedule string // standard 5-field cron expression or descriptor like "@every 1h"
	Fn       func(ctx context.Context) error
}

// Scheduler runs jobs on their cron schedules. A job still running when
// its next tick arrives skips that tick.
type Scheduler struct {
	cron   *cron.Cron
	jobs   []Job
	logger *slog.Logger

	mu       sync.Mutex
	ctx      context.Context
	done     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler evaluating schedules in loc
// (time.Local when nil).
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	logger := slog.Default()
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
		logger: logger,
		ctx:    context.Background(),
		done:   make(chan struct{}),
	}
}

// Add registers a job. The schedule is validated immediately.
func (s *Scheduler) Add(job Job) error {
	if job.Fn == nil {
		return fmt.Errorf("job %q has no function", job.Name)
	}
	_, err := s.cron.AddFunc(job.Schedule, func() {
		s.run(s.context(), job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", job.Schedule, job.Name, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// RunOnce executes all registered jobs once, in registration order.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	for _, job := range s.jobs {
		if err := s.run(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	s.logger.Info("running job", "name", job.Name)
	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		s.logger.Error("job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return err
	}
	s.logger.Info("job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}

// Next returns the next activation time across all jobs, or the zero time
// when the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Start runs the scheduler until ctx is done or Stop is called, then waits
// for running jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.ctx = jobCtx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.jobs), "next", s.Next())

	select {
	case <-ctx.Done():
	case <-s.done:
	}
	cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Stop stops the scheduler. It may be called before or during Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
