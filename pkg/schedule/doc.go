// Package schedule re-runs imports on a cron schedule.
//
// Runs never overlap: a tick that fires while the previous import is still
// running is skipped and logged.
//
//	s := schedule.New(&cfg.Schedule, func(ctx context.Context) error {
//	    _, err := imp.Run(ctx, req)
//	    return err
//	})
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop()
package schedule
