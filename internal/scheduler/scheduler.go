// Package scheduler fires the daily backup run on a fixed cron schedule.
package scheduler

import (
	"context"
	"sync"

	cron "github.com/robfig/cron"
	"github.com/rs/zerolog"

	"github.com/edvin/snapback/internal/platform"
)

// DailyRunner is the scheduled job surface of the backup orchestrator.
type DailyRunner interface {
	RunDaily(ctx context.Context, isManual bool) error
}

// Scheduler triggers the daily backup at the configured cron spec. A run
// still in flight when the next trigger fires is not overlapped; the
// trigger is skipped instead.
type Scheduler struct {
	logger zerolog.Logger
	runner DailyRunner
	spec   string
	cron   *cron.Cron

	mu      sync.Mutex
	running bool
}

// New creates a scheduler for the given cron spec (six fields, with
// seconds).
func New(logger zerolog.Logger, runner DailyRunner, spec string) *Scheduler {
	return &Scheduler{
		logger: logger.With().Str("component", "scheduler").Logger(),
		runner: runner,
		spec:   spec,
		cron:   cron.New(),
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.spec).Msg("daily backup schedule started")
	return nil
}

// Stop halts the cron loop; a run already in flight continues.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn().Msg("previous daily backup still running, skipping trigger")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	// Each scheduled run gets its own correlation id.
	ctx := platform.WithRequestID(context.Background(), platform.NewID())
	s.logger.Info().Str("request_id", platform.RequestID(ctx)).Msg("starting scheduled daily backup")

	if err := s.runner.RunDaily(ctx, false); err != nil {
		s.logger.Error().Err(err).Str("request_id", platform.RequestID(ctx)).Msg("scheduled daily backup failed")
		return
	}
	s.logger.Info().Str("request_id", platform.RequestID(ctx)).Msg("scheduled daily backup finished")
}
