// Package jobs provides the scheduled background tasks of the storefront.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds) and run a command handler on every tick.
//
// # Available Jobs
//
//  1. NotificationDispatchJob - drains the notification queue, every ten seconds by default
//  2. QueueJanitorJob - purges sent intents older than the retention period, daily at 03:00 by default
//
// # Usage
//
//	jobManager := jobs.NewJobManager(drainHandler, sweepHandler, jobs.Schedules{
//		Dispatch:  cfg.DispatchSchedule,
//		Janitor:   cfg.JanitorSchedule,
//		Retention: cfg.Retention,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// The dispatch job logs ErrDrainInProgress at debug level since it only means
// that another process is draining. Every other failure is logged as an error
// and the next tick tries again. A job that fails to start stops the jobs that
// were already running.
package jobs
