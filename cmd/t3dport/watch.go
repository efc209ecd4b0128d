package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"forge-hq/t3dport/pkg/cli"
	"forge-hq/t3dport/pkg/source"
	"forge-hq/t3dport/pkg/telemetry/health"
)

var watchFlags struct {
	request     requestFlags
	metricsAddr string
	debounce    string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-import whenever exports change",
	Long: `Import once, then watch the source folder and re-import after every
burst of changes to .T3D documents.

With --metrics-addr the process also serves /metrics, /healthz, /readyz and
/version. Readiness fails while the most recent import returned an error.

Examples:
  # Watch a level export
  t3dport watch --source exports/Level01 --dest Imported/Level01

  # Expose metrics for Prometheus
  t3dport watch --source exports/Level01 --dest Imported/Level01 --metrics-addr 127.0.0.1:9102`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags.request.register(watchCmd)
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve metrics and health probes on this address")
	watchCmd.Flags().StringVar(&watchFlags.debounce, "debounce", "", "quiet period before re-importing, e.g. 500ms")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	cfg, err := loadConfig(&watchFlags.request)
	if err != nil {
		return err
	}
	if cfg.Source.Type == "git" {
		return cli.NewConfigError("source.type", "watch needs a local source; use schedule for Git repositories")
	}
	if watchFlags.metricsAddr != "" {
		cfg.Watch.MetricsAddress = watchFlags.metricsAddr
	}
	if watchFlags.debounce != "" {
		d, err := parseDuration(watchFlags.debounce)
		if err != nil {
			return cli.NewConfigError("debounce", err.Error())
		}
		cfg.Watch.DebounceInterval = d
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
	job := env.importJob(env.importer(), req, tracker)
	env.startStatusServer(ctx, cfg.Watch.MetricsAddress, tracker)

	if err := job(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		env.logger.Error("initial import failed", "error", err)
	}

	watcher, err := source.NewWatcher(&source.WatcherConfig{
		Path:             filepath.FromSlash(req.Source),
		DebounceInterval: cfg.Watch.DebounceInterval,
		Extensions:       []string{cfg.Import.Extension},
		SkipHidden:       cfg.Watch.SkipHidden,
	}, env.logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Stop()

	err = watcher.Watch(ctx, func(ctx context.Context, changed []string) error {
		env.logger.Info("exports changed", "documents", len(changed))
		return job(ctx)
	})
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}
