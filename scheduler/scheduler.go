package scheduler

import (
	"context"
	"time"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runner performs one complete pipeline run
type Runner interface {
	Run(ctx context.Context) types.RunResult
}

// Scheduler triggers one run per interval. Runs execute on the polling
// goroutine, so a slow run delays the next poll and runs never overlap.
type Scheduler struct {
	interval time.Duration
	poll     time.Duration
	runner   Runner

	now    func() time.Time
	next   time.Time
	runs   int
	logger zerolog.Logger
}

// New creates a Scheduler using the configured interval and poll period
func New(cfg *config.Config, runner Runner) *Scheduler {
	return &Scheduler{
		interval: cfg.Schedule.Interval,
		poll:     cfg.Schedule.PollInterval,
		runner:   runner,
		now:      time.Now,
		logger:   log.With().Str("stage", "scheduler").Logger(),
	}
}

// Next is the time the next run becomes due; zero before the first poll
func (s *Scheduler) Next() time.Time {
	return s.next
}

// Runs counts the runs started so far
func (s *Scheduler) Runs() int {
	return s.runs
}

// Poll checks the clock once. The first poll only arms the schedule, making
// the first run due one interval later. When a run is due, exactly one run
// executes before Poll returns true; the next due time then moves forward by
// whole intervals until it is after the clock, so missed ticks are skipped
// rather than replayed.
func (s *Scheduler) Poll(ctx context.Context, now time.Time) bool {
	if s.next.IsZero() {
		s.next = now.Add(s.interval)
		s.logger.Info().Time("next_run", s.next).Dur("interval", s.interval).Msg("schedule armed")
		return false
	}
	if now.Before(s.next) {
		return false
	}

	s.runs++
	res := s.runner.Run(ctx)

	after := s.now()
	for !s.next.After(after) {
		s.next = s.next.Add(s.interval)
	}
	s.logger.Info().
		Str("run_id", res.RunID).
		Str("state", string(res.State)).
		Int("runs", s.runs).
		Time("next_run", s.next).
		Msg("waiting for next run")
	return true
}

// Run polls until ctx is cancelled and returns ctx.Err()
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	s.Poll(ctx, s.now())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Int("runs", s.runs).Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx, s.now())
		}
	}
}
