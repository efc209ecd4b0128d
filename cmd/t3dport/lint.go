package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"forge-hq/t3dport/pkg/cli"
	"forge-hq/t3dport/pkg/importer"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

var lintFlags struct {
	request requestFlags
	strict  bool
	format  string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check T3D exports without writing to the asset store",
	Long: `Parse T3D exports with a throwaway in-memory store and print every
diagnostic the import would record.

Structural errors, unknown classes and unreadable documents fail the lint.
With --strict, unsupported constructs and unresolved references fail it too.

Examples:
  # Lint a level export
  t3dport lint --source exports/Level01

  # Lint every material instance, JSON output for CI
  t3dport lint --mode material-instance --source exports/MI --format json

  # Fail on anything the import could not carry over
  t3dport lint --source exports/Level01 --strict`,
	RunE: lintExports,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintFlags.request.register(lintCmd)
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat unsupported constructs and unresolved references as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintExports(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	cfg, err := loadConfig(&lintFlags.request)
	if err != nil {
		return err
	}
	cfg.Store.Backend = "memory"
	if cfg.Import.Destination == "" {
		cfg.Import.Destination = "Lint"
	}

	format, err := cli.ParseOutputFormat(lintFlags.format)
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

	report, err := env.importer(importer.WithReporter(silentReporter{})).Run(ctx, req)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := (&cli.JSONFormatter{Indent: true}).FormatTo(out, cli.NewReportView(report)); err != nil {
			return cli.NewCommandError("lint", err)
		}
	} else {
		writeLintText(out, report)
	}

	if n := lintFailures(report, lintFlags.strict); n > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d problems found", n))
	}
	return nil
}

// silentReporter drops unresolved references; lint prints them itself.
type silentReporter struct{}

func (silentReporter) ReportUnresolved(context.Context, []importer.UnresolvedEntry) error {
	return nil
}

// lintFailures counts the findings that fail the lint.
func lintFailures(report *importer.Report, strict bool) int {
	n := 0
	for _, d := range report.Diagnostics.Errors {
		switch d.Type {
		case t3derrors.ErrorTypeStructural, t3derrors.ErrorTypeUnknownKind, t3derrors.ErrorTypeIO:
			n++
		default:
			if strict {
				n++
			}
		}
	}
	if strict {
		n += len(report.Unresolved)
	}
	return n
}

func writeLintText(w io.Writer, report *importer.Report) {
	fmt.Fprintf(w, "Linted %d documents in %s (%s mode)\n", report.Documents, report.Source, report.Mode)

	for _, d := range report.Diagnostics.Errors {
		fmt.Fprintf(w, "  %s\n", d.Error())
	}
	for _, u := range report.Unresolved {
		fmt.Fprintf(w, "  [unresolved] %s\n", u)
	}

	if report.Diagnostics.Count() == 0 && len(report.Unresolved) == 0 {
		fmt.Fprintln(w, "✓ No problems found")
		return
	}
	fmt.Fprintf(w, "%d diagnostics, %d unresolved references\n", report.Diagnostics.Count(), len(report.Unresolved))
}
