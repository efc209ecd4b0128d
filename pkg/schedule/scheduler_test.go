package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"forge-hq/t3dport/pkg/config"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "hourly schedule",
			schedule:    "0 * * * *",
			wantRunning: true,
		},
		{
			name:        "every 15 minutes",
			schedule:    "*/15 * * * *",
			wantRunning: true,
		},
		{
			name:     "empty schedule - no error, not running",
			schedule: "",
		},
		{
			name:      "invalid schedule",
			schedule:  "invalid cron",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&config.ScheduleConfig{Cron: tt.schedule}, func(ctx context.Context) error { return nil })

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning && s.NextRun() == nil {
				t.Error("NextRun() returned nil for running scheduler")
			}

			s.Stop()
			if s.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_RunNow(t *testing.T) {
	wantErr := errors.New("boom")
	calls := 0
	s := New(&config.ScheduleConfig{Timeout: time.Minute}, func(ctx context.Context) error {
		calls++
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job context has no deadline")
		}
		return wantErr
	})

	if err := s.RunNow(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("RunNow() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("job ran %d times, want 1", calls)
	}

	stats := s.Stats()
	if stats.Runs != 1 || !errors.Is(stats.LastErr, wantErr) || stats.LastRun.IsZero() {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestScheduler_RunsDoNotOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := New(&config.ScheduleConfig{}, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background()) }()
	<-started

	if err := s.RunNow(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("overlapping RunNow() error = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first RunNow() error = %v", err)
	}

	stats := s.Stats()
	if stats.Runs != 1 || stats.Skipped != 1 {
		t.Errorf("Stats() = %+v, want 1 run and 1 skipped", stats)
	}
}

func TestScheduler_RunOnStart(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New(&config.ScheduleConfig{Cron: "0 * * * *", RunOnStart: true}, func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run on start")
	}
}
