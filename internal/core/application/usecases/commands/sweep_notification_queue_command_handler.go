package commands

import (
	"context"
	"log/slog"

	"storefront/internal/core/ports"
	"storefront/internal/pkg/metrics"
)

// SweepNotificationQueueCommandHandler is the queue janitor. It only deletes
// sent intents, which the dispatcher never revisits, so it may run at any time.
type SweepNotificationQueueCommandHandler struct {
	queue  ports.NotificationQueue
	clock  ports.Clock
	logger *slog.Logger
}

func NewSweepNotificationQueueCommandHandler(
	queue ports.NotificationQueue,
	clock ports.Clock,
	logger *slog.Logger,
) SweepNotificationQueueCommandHandler {
	return SweepNotificationQueueCommandHandler{
		queue:  queue,
		clock:  clock,
		logger: logger.With("component", "queue_janitor"),
	}
}

// Handle returns the number of purged intents.
func (h SweepNotificationQueueCommandHandler) Handle(
	ctx context.Context,
	cmd SweepNotificationQueueCommand,
) (purged int64, err error) {
	if err = cmd.Validate(); err != nil {
		return 0, err
	}

	ctx, span := tracer.Start(ctx, "SweepNotificationQueue")
	defer func() { endSpan(span, err) }()

	cutoff := h.clock.Now().Add(-cmd.Retention())
	purged, err = h.queue.PurgeSentBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	metrics.NotificationsPurgedTotal.Add(float64(purged))
	h.logger.InfoContext(ctx, "sent notifications purged", "purged", purged, "cutoff", cutoff)
	return purged, nil
}
