package main

import (
	"github.com/spf13/cobra"

	"forge-hq/t3dport/pkg/cli"
	"forge-hq/t3dport/pkg/importer"
)

var importFlags struct {
	request     requestFlags
	format      string
	interactive bool
	metricsFile string
	strict      bool
	noProgress  bool
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import T3D exports into the asset store",
	Long: `Import T3D exports into the configured asset store.

Scene mode reads the level document from the source folder and imports its
actors together with the materials and instances they reference. The batch
modes scan the source folder recursively for documents of one kind.

Unresolved references are listed in the report. With --strict they make
the command exit with status 2.

Examples:
  # Import a level
  t3dport import --mode scene --source exports/Level01 --dest Imported/Level01

  # Import material instances, JSON report for CI
  t3dport import -m material-instance -s exports/MI -d Game/Materials --format json

  # Import from a Git repository
  t3dport import --git-url https://example.com/art/exports.git --source Level01 --dest Imported/Level01

  # Ask for mode, source and destination
  t3dport import --interactive`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importFlags.request.register(importCmd)
	importCmd.Flags().StringVar(&importFlags.format, "format", "", "report format: text, json (default from config)")
	importCmd.Flags().BoolVarP(&importFlags.interactive, "interactive", "i", false, "prompt for mode, source and destination")
	importCmd.Flags().StringVar(&importFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	importCmd.Flags().BoolVar(&importFlags.strict, "strict", false, "fail when references remain unresolved")
	importCmd.Flags().BoolVar(&importFlags.noProgress, "no-progress", false, "disable the progress bar")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	cfg, err := loadConfig(&importFlags.request)
	if err != nil {
		return err
	}

	if importFlags.interactive {
		mode, _ := importer.ParseMode(cfg.Import.Mode)
		req, err := cli.PromptRequest(cli.PromptOptions{
			Mode:        mode,
			Source:      cfg.Import.SourceDir,
			Destination: cfg.Import.Destination,
			Input:       cmd.InOrStdin(),
			Output:      cmd.ErrOrStderr(),
		})
		if err != nil {
			return cli.NewCommandError("import", err)
		}
		cfg.Import.Mode = string(req.Mode)
		cfg.Import.SourceDir = req.Source
		cfg.Import.Destination = req.Destination
	}

	formatName := cfg.Import.ReportFormat
	if importFlags.format != "" {
		formatName = importFlags.format
	}
	format, err := cli.ParseOutputFormat(formatName)
	if err != nil {
		return err
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

	var progress cli.ProgressReporter = cli.NopProgress{}
	if !importFlags.noProgress && format == cli.FormatText {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "Import "+req.Mode.String())
	}

	report, runErr := env.importer(importer.WithProgress(progress)).Run(ctx, req)
	if runErr != nil {
		progress.Error(runErr)
	}
	env.writeMetrics(importFlags.metricsFile)

	if report != nil {
		if err := cli.NewReportFormatter(format, cmd.OutOrStdout()).Write(report); err != nil {
			return cli.NewCommandError("import", err)
		}
	}

	if runErr != nil {
		return cli.NewCommandError("import", runErr)
	}
	if importFlags.strict && len(report.Unresolved) > 0 {
		return &cli.IncompleteError{Unresolved: len(report.Unresolved)}
	}
	return nil
}
