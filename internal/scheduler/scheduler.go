// Package scheduler triggers the daily onsite and remote runs from cron
// expressions and remembers how the last run of each mode went.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jimezsa/jobmail/internal/config"
	"github.com/jimezsa/jobmail/internal/models"
	"github.com/jimezsa/jobmail/internal/outreach"
)

// Runner executes one run for mode.
type Runner func(ctx context.Context, mode models.Mode) (outreach.Summary, error)

// RunStatus is the outcome of the most recent run of a mode.
type RunStatus struct {
	Mode       models.Mode `json:"mode"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Emailed    int         `json:"emailed"`
	Errors     int         `json:"errors"`
	Error      string      `json:"error,omitempty"`
	Skipped    bool        `json:"skipped,omitempty"`
}

type Scheduler struct {
	cron   *cron.Cron
	run    Runner
	logger zerolog.Logger
	now    func() time.Time

	// running serializes runs across both modes.
	running sync.Mutex

	mu   sync.RWMutex
	last map[models.Mode]RunStatus
	ctx  context.Context
}

type Option func(*Scheduler)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New registers the onsite and remote schedules from cfg.
func New(cfg config.SchedulerConfig, run Runner, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		run:    run,
		logger: zerolog.Nop(),
		now:    time.Now,
		last:   map[models.Mode]RunStatus{},
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "scheduler").Logger()
	s.cron = cron.New(cron.WithLogger(cronLogger{logger: s.logger}))

	schedules := []struct {
		mode models.Mode
		spec string
	}{
		{models.ModeOnsite, cfg.OnsiteCron},
		{models.ModeRemote, cfg.RemoteCron},
	}
	for _, schedule := range schedules {
		mode := schedule.mode
		if _, err := s.cron.AddFunc(schedule.spec, func() { s.Trigger(s.context(), mode) }); err != nil {
			return nil, fmt.Errorf("%s schedule %q: %w", mode, schedule.spec, err)
		}
		s.logger.Info().Str("mode", string(mode)).Str("cron", schedule.spec).Msg("schedule registered")
	}
	return s, nil
}

// Start runs the cron loop until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop halts scheduling and waits for a run in progress to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger runs mode now unless another run is in progress. It reports
// whether the run happened.
func (s *Scheduler) Trigger(ctx context.Context, mode models.Mode) bool {
	if !s.running.TryLock() {
		s.logger.Warn().Str("mode", string(mode)).Msg("previous run still in progress, skipping")
		return false
	}
	defer s.running.Unlock()

	status := RunStatus{Mode: mode, StartedAt: s.now()}
	summary, err := s.run(ctx, mode)
	status.FinishedAt = s.now()
	status.Emailed = summary.Stats.TotalEmailed
	status.Errors = summary.Stats.TotalErrors
	status.Skipped = summary.Skipped
	if err != nil {
		status.Error = err.Error()
		s.logger.Error().Err(err).Str("mode", string(mode)).Msg("scheduled run failed")
	}

	s.mu.Lock()
	s.last[mode] = status
	s.mu.Unlock()
	return true
}

// LastRuns returns a copy of the latest status per mode.
func (s *Scheduler) LastRuns() map[models.Mode]RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.Mode]RunStatus, len(s.last))
	for mode, status := range s.last {
		out[mode] = status
	}
	return out
}

// Next returns the next activation time per mode.
func (s *Scheduler) Next() []time.Time {
	var out []time.Time
	for _, entry := range s.cron.Entries() {
		out = append(out, entry.Next)
	}
	return out
}

func (s *Scheduler) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
