package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"forge-hq/t3dport/pkg/assets"
	"forge-hq/t3dport/pkg/cli"
	"forge-hq/t3dport/pkg/config"
	"forge-hq/t3dport/pkg/importer"
	"forge-hq/t3dport/pkg/source"
	"forge-hq/t3dport/pkg/telemetry/logging"
	"forge-hq/t3dport/pkg/telemetry/metrics"
	"forge-hq/t3dport/pkg/telemetry/tracing"
)

const telemetryShutdownTimeout = 5 * time.Second

// requestFlags select what to import. Empty flags keep the configured value.
type requestFlags struct {
	mode   string
	source string
	dest   string
	gitURL string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "import mode: scene, mesh, material, material-instance")
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "folder holding the .T3D exports")
	cmd.Flags().StringVarP(&f.dest, "dest", "d", "", "package root the imported objects are placed under")
	cmd.Flags().StringVar(&f.gitURL, "git-url", "", "clone exports from this Git repository; --source is relative to the clone")
}

func (f *requestFlags) apply(cfg *config.Config) {
	if f.mode != "" {
		cfg.Import.Mode = f.mode
	}
	if f.source != "" {
		cfg.Import.SourceDir = f.source
	}
	if f.dest != "" {
		cfg.Import.Destination = f.dest
	}
	if f.gitURL != "" {
		cfg.Source.Type = "git"
		cfg.Source.Git.Repository = f.gitURL
	}
}

// loadConfig reads the configuration file named by --config and applies
// the request flags on top.
func loadConfig(f *requestFlags) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	if f != nil {
		f.apply(cfg)
	}
	if _, err := importer.ParseMode(cfg.Import.Mode); err != nil {
		return nil, cli.NewConfigError("mode", err.Error())
	}
	return cfg, nil
}

// environment holds everything one command needs to run imports.
type environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   assets.Store
	src     source.Source
	git     *source.GitSource
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// newEnvironment builds the logger, store, source and telemetry described
// by cfg. A Git source is synced before returning.
func newEnvironment(ctx context.Context, cfg *config.Config) (*environment, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	store, err := openStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset store: %w", err)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	env := &environment{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:  tracer,
	}

	if err := env.openSource(ctx); err != nil {
		env.close()
		return nil, err
	}
	return env, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	if verbose {
		lc.Level = "debug"
	}
	lc.Writer = os.Stderr

	logger, err := logging.New(lc)
	if err != nil {
		return nil, err
	}
	logger.SetDefault()
	return logger.Slog(), nil
}

func openStore(cfg *config.StoreConfig) (assets.Store, error) {
	schema := assets.DefaultSchema
	if cfg.Permissive {
		schema = nil
	}

	if cfg.Backend == "memory" {
		return assets.NewMemoryStore(schema), nil
	}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return assets.NewSQLiteStore(&assets.SQLiteConfig{
		Path:        cfg.SQLite.Path,
		Driver:      cfg.SQLite.Driver,
		WALMode:     cfg.SQLite.WALMode,
		BusyTimeout: cfg.SQLite.BusyTimeout,
		Schema:      schema,
	})
}

func (e *environment) openSource(ctx context.Context) error {
	if e.cfg.Source.Type != "git" {
		src := source.NewOSSource()
		src.SkipHidden = e.cfg.Watch.SkipHidden
		e.src = src
		return nil
	}

	git, err := source.NewGitSource(&e.cfg.Source.Git, e.logger)
	if err != nil {
		return cli.NewConfigError("source.git", err.Error())
	}
	if _, err := git.Sync(ctx); err != nil {
		return fmt.Errorf("failed to sync export repository: %w", err)
	}
	e.git = git
	e.src = git
	return nil
}

// request builds the import request from the configuration. Git sources
// resolve the source folder inside the clone.
func (e *environment) request() (importer.Request, error) {
	mode, err := importer.ParseMode(e.cfg.Import.Mode)
	if err != nil {
		return importer.Request{}, cli.NewConfigError("mode", err.Error())
	}

	src := e.cfg.Import.SourceDir
	if e.git != nil {
		src = source.Join(filepath.ToSlash(e.git.Root()), src)
	}
	if src == "" {
		return importer.Request{}, cli.NewConfigError("source", "source folder is required")
	}

	return importer.Request{
		Mode:        mode,
		Source:      src,
		Destination: e.cfg.Import.Destination,
	}, nil
}

func (e *environment) importer(opts ...importer.Option) *importer.Importer {
	base := []importer.Option{
		importer.WithLogger(e.logger.With("component", "importer")),
		importer.WithMetrics(e.metrics),
		importer.WithTracer(e.tracer),
		importer.WithLevelFile(e.cfg.Import.LevelFile),
		importer.WithExtension(e.cfg.Import.Extension),
	}
	return importer.New(e.store, e.src, append(base, opts...)...)
}

// writeMetrics exports the registry to the configured textfile, if any.
func (e *environment) writeMetrics(path string) {
	if path == "" {
		path = e.cfg.Telemetry.Metrics.TextfilePath
	}
	if path == "" {
		return
	}
	if err := e.metrics.WriteToTextfile(path); err != nil {
		e.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
	}
}

func (e *environment) close() {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	if err := e.tracer.Shutdown(ctx); err != nil {
		e.logger.Warn("failed to flush traces", "error", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close asset store", "error", err)
	}
}
