package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Schedules holds the cron expressions (with seconds) of the background jobs.
type Schedules struct {
	Dispatch  string
	Janitor   string
	Retention time.Duration
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dispatchJob *NotificationDispatchJob
	janitorJob  *QueueJanitorJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	drainHandler queueDrainer,
	sweepHandler queueSweeper,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		dispatchJob: NewNotificationDispatchJob(drainHandler, schedules.Dispatch, logger),
		janitorJob:  NewQueueJanitorJob(sweepHandler, schedules.Janitor, schedules.Retention, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start notification dispatch job: %w", err)
	}

	if err := jm.janitorJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.dispatchJob.Stop()
		return fmt.Errorf("failed to start queue janitor job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.janitorJob.Stop()
	jm.dispatchJob.Stop()
}
