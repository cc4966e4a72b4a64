package jobs

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultJanitorSchedule runs the sweep every day at 03:00.
const DefaultJanitorSchedule = "0 0 3 * * *"

type queueSweeper interface {
	Handle(ctx context.Context, cmd commands.SweepNotificationQueueCommand) (int64, error)
}

// QueueJanitorJob deletes sent notification intents older than the retention period.
type QueueJanitorJob struct {
	handler   queueSweeper
	schedule  string
	retention time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewQueueJanitorJob(
	handler queueSweeper,
	schedule string,
	retention time.Duration,
	logger *slog.Logger,
) *QueueJanitorJob {
	if schedule == "" {
		schedule = DefaultJanitorSchedule
	}
	return &QueueJanitorJob{
		handler:   handler,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "queue_janitor_job"),
	}
}

// Start validates the retention period and starts the scheduler.
func (j *QueueJanitorJob) Start() error {
	cmd, err := commands.NewSweepNotificationQueueCommand(j.retention)
	if err != nil {
		return err
	}

	_, err = j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if _, sweepErr := j.handler.Handle(ctx, cmd); sweepErr != nil {
			j.logger.ErrorContext(ctx, "Queue janitor job failed", "error", sweepErr)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Queue janitor job started",
		"schedule", j.schedule, "retention", j.retention)
	return nil
}

func (j *QueueJanitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Queue janitor job stopped")
}
