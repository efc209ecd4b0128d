package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"forge-hq/t3dport/pkg/config"
)

// ErrBusy is returned by RunNow while another run is in progress.
var ErrBusy = errors.New("previous import still running")

// Job is one scheduled import.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	config *config.ScheduleConfig
	job    Job
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool

	// runMu is held for the duration of one job.
	runMu sync.Mutex

	statsMu sync.Mutex
	runs    int
	skipped int
	lastErr error
	lastRun time.Time
}

// New creates a scheduler for job.
func New(cfg *config.ScheduleConfig, job Job) *Scheduler {
	return &Scheduler{
		config: cfg,
		job:    job,
		cron:   cron.New(),
		logger: slog.Default().With("component", "schedule"),
	}
}

// WithLogger sets the logger and returns s.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

// Start schedules the job using the configured cron expression.
//
// Common cron expressions:
//   - "0 * * * *"    - Hourly
//   - "*/15 * * * *" - Every 15 minutes
//   - "0 3 * * *"    - Daily at 3 AM
//
// If the expression is empty, the scheduler does nothing. The scheduler
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Cron == "" {
		s.logger.Info("import schedule not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	if _, err := cron.ParseStandard(s.config.Cron); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Cron, err)
	}

	_, err := s.cron.AddFunc(s.config.Cron, func() {
		if err := s.RunNow(ctx); err != nil && !errors.Is(err, ErrBusy) {
			s.logger.Error("scheduled import failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule import: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("import scheduler started",
		"schedule", s.config.Cron,
		"timeout", s.config.Timeout,
	)

	if s.config.RunOnStart {
		go func() {
			if err := s.RunNow(ctx); err != nil && !errors.Is(err, ErrBusy) {
				s.logger.Error("initial import failed", "error", err)
			}
		}()
	}

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow runs the job once unless a run is already in progress.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.runMu.TryLock() {
		s.statsMu.Lock()
		s.skipped++
		s.statsMu.Unlock()
		s.logger.Warn("skipping scheduled import, previous run still in progress")
		return ErrBusy
	}
	defer s.runMu.Unlock()

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("starting scheduled import")
	err := s.job(ctx)

	s.statsMu.Lock()
	s.runs++
	s.lastErr = err
	s.lastRun = start
	s.statsMu.Unlock()

	if err == nil {
		s.logger.Info("scheduled import completed", "duration", time.Since(start))
	}
	return err
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("import scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

// Stats describes the runs so far.
type Stats struct {
	Runs    int
	Skipped int
	LastRun time.Time
	LastErr error
}

// Stats returns the run counters.
func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	return Stats{Runs: s.runs, Skipped: s.skipped, LastRun: s.lastRun, LastErr: s.lastErr}
}
