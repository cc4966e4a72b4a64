package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ErrDrainInProgress is returned when another drain pass holds the drain lock.
var ErrDrainInProgress = errors.New("notification drain already in progress")

// DrainOptions tunes a drain pass. Zero values fall back to the defaults.
type DrainOptions struct {
	BatchSize     int
	MaxAttempts   int
	IntentTimeout time.Duration
	Concurrency   int
}

const DefaultIntentTimeout = 5 * time.Second

func (o DrainOptions) withDefaults() DrainOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = notification.DefaultBatchSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = notification.MaxAttempts
	}
	if o.IntentTimeout <= 0 {
		o.IntentTimeout = DefaultIntentTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return o
}

// DrainResult counts the outcomes of one pass. Failed covers both terminal
// failures and transient ones that consumed an attempt. Skipped intents were
// handled by a concurrent worker first.
type DrainResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int
}

type outcome string

const (
	outcomeSent      outcome = "sent"
	outcomeTerminal  outcome = "terminal"
	outcomeTransient outcome = "transient"
	outcomeSkipped   outcome = "skipped"
)

func (r *DrainResult) add(o outcome) {
	r.Attempted++
	switch o {
	case outcomeSent:
		r.Succeeded++
	case outcomeTerminal, outcomeTransient:
		r.Failed++
	case outcomeSkipped:
		r.Skipped++
	}
}

// DrainNotificationQueueCommandHandler dispatches due notification intents.
//
// For each fetched intent it loads the order, renders the message and records
// the outcome:
//   - order missing, or a message without delivery target: terminal failure
//   - any other error, including the per-intent timeout: one more attempt
//   - rendered: the intent is marked sent, then handed to the delivery channel
//
// Marking the intent sent is the commit point; a delivery failure after it is
// logged and not retried. Intents are processed independently, so one bad intent
// never stops the batch. Only a failure to fetch the batch is returned.
type DrainNotificationQueueCommandHandler struct {
	queue    ports.NotificationQueue
	orders   ports.OrderRepository
	renderer ports.MessageRenderer
	delivery ports.MessageDelivery
	lock     ports.DrainLock
	clock    ports.Clock
	opts     DrainOptions
	logger   *slog.Logger
}

// NewDrainNotificationQueueCommandHandler builds the dispatcher. lock may be nil
// when a single process drains the queue.
func NewDrainNotificationQueueCommandHandler(
	queue ports.NotificationQueue,
	orders ports.OrderRepository,
	renderer ports.MessageRenderer,
	delivery ports.MessageDelivery,
	lock ports.DrainLock,
	clock ports.Clock,
	opts DrainOptions,
	logger *slog.Logger,
) DrainNotificationQueueCommandHandler {
	return DrainNotificationQueueCommandHandler{
		queue:    queue,
		orders:   orders,
		renderer: renderer,
		delivery: delivery,
		lock:     lock,
		clock:    clock,
		opts:     opts.withDefaults(),
		logger:   logger.With("component", "notification_dispatcher"),
	}
}

func (h DrainNotificationQueueCommandHandler) Handle(
	ctx context.Context,
	cmd DrainNotificationQueueCommand,
) (result DrainResult, err error) {
	if err = cmd.Validate(); err != nil {
		return DrainResult{}, err
	}

	ctx, span := tracer.Start(ctx, "DrainNotificationQueue")
	defer func() {
		span.SetAttributes(
			attribute.Int("drain.attempted", result.Attempted),
			attribute.Int("drain.succeeded", result.Succeeded),
			attribute.Int("drain.failed", result.Failed),
			attribute.Int("drain.skipped", result.Skipped),
		)
		endSpan(span, err)
	}()

	if h.lock != nil {
		release, acquired, lockErr := h.lock.TryAcquire(ctx)
		if lockErr != nil {
			return DrainResult{}, fmt.Errorf("acquire drain lock: %w", lockErr)
		}
		if !acquired {
			return DrainResult{}, ErrDrainInProgress
		}
		defer func() {
			if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
				h.logger.WarnContext(ctx, "failed to release drain lock", "error", releaseErr)
			}
		}()
	}

	started := time.Now()
	defer func() { metrics.DrainDuration.Observe(time.Since(started).Seconds()) }()

	intents, err := h.queue.FetchDue(ctx, h.opts.BatchSize, h.opts.MaxAttempts, h.clock.Now())
	if err != nil {
		return DrainResult{}, errs.NewTransientError("fetch due notifications", err)
	}
	if len(intents) == 0 {
		return DrainResult{}, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(h.opts.Concurrency)

	for _, intent := range intents {
		g.Go(func() error {
			o := h.process(ctx, intent)
			metrics.NotificationOutcomesTotal.WithLabelValues(string(o)).Inc()

			mu.Lock()
			result.add(o)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	h.logger.InfoContext(ctx, "notification drain finished",
		"attempted", result.Attempted, "succeeded", result.Succeeded,
		"failed", result.Failed, "skipped", result.Skipped)

	return result, nil
}

// process handles one intent and never returns an error past its own boundary.
func (h DrainNotificationQueueCommandHandler) process(ctx context.Context, intent *notification.Intent) outcome {
	logger := h.logger.With(
		"intent_id", intent.ID().String(),
		"order_id", intent.OrderID().String(),
		"type", intent.Type().String(),
	)

	msg, err := h.prepare(ctx, intent)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.opts.IntentTimeout)
	defer cancel()
	now := h.clock.Now()

	if err == nil {
		err = h.queue.MarkSent(writeCtx, intent, msg, now)
		if err == nil {
			h.deliver(writeCtx, logger, intent, msg)
			return outcomeSent
		}
		if errors.Is(err, errs.ErrConflict) {
			logger.DebugContext(ctx, "intent already handled by another worker")
			return outcomeSkipped
		}
		err = errs.NewTransientError("mark notification sent", err)
	}

	if errors.Is(err, errs.ErrTerminal) {
		if markErr := h.queue.MarkFailedTerminal(writeCtx, intent, err.Error(), now); markErr != nil {
			return h.writeFailed(ctx, logger, markErr)
		}
		logger.WarnContext(ctx, "notification failed permanently", "error", err)
		return outcomeTerminal
	}

	state, markErr := h.queue.IncrementAttempt(writeCtx, intent, err.Error(), h.opts.MaxAttempts, now)
	if markErr != nil {
		return h.writeFailed(ctx, logger, markErr)
	}
	logger.WarnContext(ctx, "notification attempt failed",
		"attempt", intent.Attempts(), "state", state.String(), "error", err)
	return outcomeTransient
}

// prepare resolves the order and renders the message under the per-intent timeout.
func (h DrainNotificationQueueCommandHandler) prepare(
	ctx context.Context,
	intent *notification.Intent,
) (notification.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, h.opts.IntentTimeout)
	defer cancel()

	o, err := h.orders.Get(ctx, intent.OrderID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return notification.Message{}, errs.NewTerminalErrorWithCause("order not found", err)
	}
	if err != nil {
		return notification.Message{}, errs.NewTransientError("load order", err)
	}

	msg, err := h.renderer.Render(ctx, o, intent.Type(), intent.Metadata())
	switch {
	case errors.Is(err, errs.ErrTerminal):
		return notification.Message{}, err
	case err != nil:
		return notification.Message{}, errs.NewTransientError("render message", err)
	case !msg.IsDeliverable():
		return notification.Message{}, errs.NewTerminalError("rendered message has no delivery target")
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return notification.Message{}, errs.NewTransientError("render message", ctxErr)
	}
	return msg, nil
}

func (h DrainNotificationQueueCommandHandler) deliver(
	ctx context.Context,
	logger *slog.Logger,
	intent *notification.Intent,
	msg notification.Message,
) {
	if h.delivery == nil {
		return
	}
	if err := h.delivery.Deliver(ctx, intent, msg); err != nil {
		metrics.NotificationDeliveryFailuresTotal.Inc()
		logger.ErrorContext(ctx, "notification marked sent but delivery failed", "error", err)
	}
}

// writeFailed classifies a failed outcome write.
func (h DrainNotificationQueueCommandHandler) writeFailed(
	ctx context.Context,
	logger *slog.Logger,
	err error,
) outcome {
	if errors.Is(err, errs.ErrConflict) {
		logger.DebugContext(ctx, "intent already handled by another worker")
		return outcomeSkipped
	}
	logger.ErrorContext(ctx, "failed to record notification outcome", "error", err)
	return outcomeTransient
}
