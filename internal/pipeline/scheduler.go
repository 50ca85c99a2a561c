package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Refresher reloads the served snapshot after a successful run.
type Refresher interface {
	Refresh() error
}

// Scheduler reruns the pipeline on a fixed interval.
type Scheduler struct {
	runner    Runner
	refresher Refresher
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewScheduler creates a Scheduler. A nil clock uses the real clock.
func NewScheduler(r Runner, refresher Refresher, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{runner: r, refresher: refresher, interval: interval, clock: clock, logger: logger}
}

// Start runs the pipeline every interval until ctx is cancelled. Failed runs
// are logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("refresh scheduler started", "interval", s.interval)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh scheduler stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Warn("scheduled run failed, keeping current snapshot", "error", err)
		return
	}
	if err := s.refresher.Refresh(); err != nil {
		s.logger.Warn("snapshot reload failed after scheduled run", "error", err)
	}
}
