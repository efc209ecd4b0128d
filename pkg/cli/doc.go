/*
Package cli provides the terminal helpers used by the t3dport command.

Report Output:

An import report is printed either as styled text or as JSON:

	formatter := cli.NewReportFormatter(cli.FormatText, os.Stdout)
	if err := formatter.Write(report); err != nil {
		return err
	}

Progress Reporting:

The progress reporter draws a step bar and satisfies the importer's
progress interface:

	progress := cli.NewProgressReporter(os.Stderr, "Importing")
	imp := importer.New(store, src, importer.WithProgress(progress))

Interactive Requests:

PromptRequest asks for the mode, source and destination with a form when
they were not given as flags.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
