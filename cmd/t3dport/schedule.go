package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"forge-hq/t3dport/pkg/cli"
	"forge-hq/t3dport/pkg/schedule"
	"forge-hq/t3dport/pkg/telemetry/health"
)

var scheduleFlags struct {
	request     requestFlags
	cron        string
	runOnStart  bool
	timeout     string
	metricsAddr string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-import on a cron schedule",
	Long: `Run the configured import on a cron schedule until interrupted.

Git sources are pulled before every run and the import is skipped when the
pull brought no changes. Runs never overlap: a tick that fires while an
import is still running is skipped.

Examples:
  # Re-import every 15 minutes
  t3dport schedule --cron "*/15 * * * *" --source exports/Level01 --dest Imported/Level01

  # Track a Git repository, importing once at start
  t3dport schedule --git-url https://example.com/art/exports.git --cron "0 * * * *" --run-on-start`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleFlags.request.register(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleFlags.cron, "cron", "", "five-field cron expression (default from config)")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.runOnStart, "run-on-start", false, "import once when the scheduler starts")
	scheduleCmd.Flags().StringVar(&scheduleFlags.timeout, "timeout", "", "limit for one import, e.g. 30m")
	scheduleCmd.Flags().StringVar(&scheduleFlags.metricsAddr, "metrics-addr", "", "serve metrics and health probes on this address")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	cfg, err := loadConfig(&scheduleFlags.request)
	if err != nil {
		return err
	}
	if scheduleFlags.cron != "" {
		cfg.Schedule.Cron = scheduleFlags.cron
	}
	if scheduleFlags.runOnStart {
		cfg.Schedule.RunOnStart = true
	}
	if scheduleFlags.timeout != "" {
		d, err := parseDuration(scheduleFlags.timeout)
		if err != nil {
			return cli.NewConfigError("timeout", err.Error())
		}
		cfg.Schedule.Timeout = d
	}
	if scheduleFlags.metricsAddr != "" {
		cfg.Watch.MetricsAddress = scheduleFlags.metricsAddr
	}
	if cfg.Schedule.Cron == "" {
		return cli.NewConfigError("cron", "a cron expression is required")
	}

	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.close()

	req, err := env.request()
	if err != nil {
		return err
	}

	tracker := health.NewRunTracker()
	run := env.importJob(env.importer(), req, tracker)

	imported := false
	job := func(ctx context.Context) error {
		if env.git != nil {
			res, err := env.git.Sync(ctx)
			if err != nil {
				tracker.Observe(0, err)
				return fmt.Errorf("failed to sync export repository: %w", err)
			}
			if imported && !res.HadChanges {
				env.logger.Info("export repository unchanged, skipping import", "head", res.ToSHA)
				return nil
			}
		}
		imported = true
		return run(ctx)
	}

	scheduler := schedule.New(&cfg.Schedule, job).WithLogger(env.logger)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("cron", err.Error())
	}
	env.startStatusServer(ctx, cfg.Watch.MetricsAddress, tracker)

	if next := scheduler.NextRun(); next != nil {
		env.logger.Info("next import scheduled", "at", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	scheduler.Stop()
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}
