package commands

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/metrics"
)

// queueDrainer runs one drain pass; satisfied by DrainNotificationQueueCommandHandler.
type queueDrainer interface {
	Handle(ctx context.Context, cmd DrainNotificationQueueCommand) (DrainResult, error)
}

// Notifier queues customer notifications for lifecycle changes that were
// already committed. It never returns an error: a notification problem must not
// turn a successful order update into a failure.
type Notifier struct {
	queue   ports.NotificationQueue
	clock   ports.Clock
	logger  *slog.Logger
	drainer queueDrainer
}

func NewNotifier(queue ports.NotificationQueue, clock ports.Clock, logger *slog.Logger) *Notifier {
	return &Notifier{
		queue:  queue,
		clock:  clock,
		logger: logger.With("component", "notifier"),
	}
}

// WithImmediateDrain makes Notify run a best-effort drain pass after every
// successful enqueue.
func (n *Notifier) WithImmediateDrain(drainer queueDrainer) *Notifier {
	n.drainer = drainer
	return n
}

// Notify enqueues a notification of type t for o and reports whether it was queued.
// TypeNone queues nothing.
func (n *Notifier) Notify(
	ctx context.Context,
	o *order.Order,
	t notification.Type,
	metadata notification.Metadata,
) bool {
	if t == notification.TypeNone {
		return false
	}

	intent, err := notification.NewIntent(
		o.ID(), o.CustomerContact(), t, notification.PriorityForType(t), metadata, n.clock.Now(),
	)
	if err == nil {
		_, err = n.queue.Enqueue(ctx, intent)
	}
	if err != nil {
		metrics.NotificationsEnqueuedTotal.WithLabelValues(t.String(), "error").Inc()
		n.logger.WarnContext(ctx, "notification was not queued",
			"order_id", o.ID().String(), "type", t.String(), "error", err)
		return false
	}

	metrics.NotificationsEnqueuedTotal.WithLabelValues(t.String(), "queued").Inc()
	n.logger.DebugContext(ctx, "notification queued",
		"order_id", o.ID().String(), "intent_id", intent.ID().String(), "type", t.String())

	n.drainNow(ctx)
	return true
}

func (n *Notifier) drainNow(ctx context.Context) {
	if n.drainer == nil {
		return
	}

	result, err := n.drainer.Handle(ctx, NewDrainNotificationQueueCommand())
	switch {
	case errors.Is(err, ErrDrainInProgress):
		n.logger.DebugContext(ctx, "immediate drain skipped, another pass is running")
	case err != nil:
		n.logger.WarnContext(ctx, "immediate drain failed", "error", err)
	default:
		n.logger.DebugContext(ctx, "immediate drain finished",
			"attempted", result.Attempted, "succeeded", result.Succeeded,
			"failed", result.Failed, "skipped", result.Skipped)
	}
}
