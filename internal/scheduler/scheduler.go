// Package scheduler runs the daily aggregation jobs on an interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Job is a named task run by the scheduler.
type Job struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Scheduler runs jobs at a fixed interval.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
	done   chan struct{}
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
}

// Add registers a job with the scheduler.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// RunOnce executes all registered jobs once, in order. A failing job is
// logged and does not stop the others; the error reports how many failed.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	failed := 0
	for _, job := range s.jobs {
		s.logger.Info("running job", "name", job.Name)
		start := time.Now()
		if err := job.Fn(ctx); err != nil {
			s.logger.Error("job failed", "name", job.Name, "error", err, "duration", time.Since(start))
			failed++
			continue
		}
		s.logger.Info("job completed", "name", job.Name, "duration", time.Since(start))
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d jobs failed", failed, len(s.jobs))
	}
	return nil
}

// Start runs all jobs immediately, then again every interval until the
// context is canceled or Stop is called.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.logger.Info("scheduler started", "interval", interval, "jobs", len(s.jobs))

	s.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-s.done:
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop stops the scheduler loop.
func (s *Scheduler) Stop() {
	close(s.done)
}
