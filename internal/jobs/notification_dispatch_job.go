package jobs

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultDispatchSchedule runs a drain pass every ten seconds.
const DefaultDispatchSchedule = "*/10 * * * * *"

type queueDrainer interface {
	Handle(ctx context.Context, cmd commands.DrainNotificationQueueCommand) (commands.DrainResult, error)
}

// NotificationDispatchJob periodically drains the notification queue.
type NotificationDispatchJob struct {
	handler  queueDrainer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewNotificationDispatchJob creates the dispatch job. An empty schedule uses DefaultDispatchSchedule.
func NewNotificationDispatchJob(handler queueDrainer, schedule string, logger *slog.Logger) *NotificationDispatchJob {
	if schedule == "" {
		schedule = DefaultDispatchSchedule
	}
	return &NotificationDispatchJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "notification_dispatch_job"),
	}
}

// Start registers the drain pass and starts the scheduler.
func (j *NotificationDispatchJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Notification dispatch job started", "schedule", j.schedule)
	return nil
}

func (j *NotificationDispatchJob) run() {
	ctx := context.Background()

	result, err := j.handler.Handle(ctx, commands.NewDrainNotificationQueueCommand())
	if err != nil {
		// Another replica holds the drain lock
		if errors.Is(err, commands.ErrDrainInProgress) {
			j.logger.DebugContext(ctx, "Drain pass skipped", "error", err)
			return
		}
		j.logger.ErrorContext(ctx, "Notification dispatch job failed", "error", err)
		return
	}

	if result.Attempted > 0 {
		j.logger.InfoContext(ctx, "Drain pass finished",
			"attempted", result.Attempted, "succeeded", result.Succeeded,
			"failed", result.Failed, "skipped", result.Skipped)
	}
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *NotificationDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Notification dispatch job stopped")
}
