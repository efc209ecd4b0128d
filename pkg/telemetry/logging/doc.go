// Package logging provides structured logging on top of log/slog.
//
// Logger adds the fields of an import run (run ID, mode, document, pass)
// stored in the context:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "import started", "source", src)
//
// Components take a plain *slog.Logger (Logger.Slog) and use Attrs to add
// the same run fields.
package logging
