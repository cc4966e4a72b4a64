package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/services"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
)

// LifecycleResult is the outcome of a committed lifecycle operation.
// NotificationQueued is advisory: the operation succeeded even when it is false.
type LifecycleResult struct {
	Order              *order.Order
	NotificationQueued bool
}

// ChangeOrderStatusCommandHandler validates and applies a status transition,
// records it in the order history and queues the matching customer notification.
//
// The order update and the history entry share one transaction. The
// notification is queued only after that transaction commits and its failure
// is logged, never returned.
//
// Example:
//
//	cmd, _ := NewChangeOrderStatusCommand(orderID, "shipped", "sent with Olva", "Lucia")
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):
//	    // 404
//	case errors.Is(err, services.ErrInvalidTransition):
//	    // 400 with the rejection reason
//	case err != nil:
//	    // 500
//	}
//	fmt.Println(result.Order.Status(), result.NotificationQueued)
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	validator  services.TransitionValidator
	notifier   *Notifier
	clock      ports.Clock
	logger     *slog.Logger
}

func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	notifier *Notifier,
	clock ports.Clock,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		validator:  services.NewTransitionValidator(),
		notifier:   notifier,
		clock:      clock,
		logger:     logger.With("component", "change_order_status"),
	}
}

func (h ChangeOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
) (result LifecycleResult, err error) {
	if err = cmd.Validate(); err != nil {
		return LifecycleResult{}, err
	}

	ctx, span := tracer.Start(ctx, "ChangeOrderStatus")
	span.SetAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("order.requested_status", cmd.Status().String()),
	)
	defer func() { endSpan(span, err) }()

	o, before, err := h.apply(ctx, cmd)
	if err != nil {
		return LifecycleResult{}, err
	}

	metrics.OrderTransitionsTotal.WithLabelValues(before.String(), o.Status().String()).Inc()
	h.logger.InfoContext(ctx, "order status changed",
		"order_id", o.ID().String(), "from", before.String(), "to", o.Status().String(),
		"actor", cmd.Actor().Name)

	metadata := notification.Metadata{}
	if cmd.Note() != "" {
		metadata[notification.MetadataNote] = cmd.Note()
	}
	if o.Status() == order.Cancelled {
		metadata[notification.MetadataReason] = o.CancellationReason()
	}

	queued := h.notifier.Notify(ctx, o, notification.TypeForStatus(o.Status()), metadata)
	span.SetAttributes(attribute.Bool("notification.queued", queued))

	return LifecycleResult{Order: o, NotificationQueued: queued}, nil
}

func (h ChangeOrderStatusCommandHandler) apply(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
) (*order.Order, order.Status, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, order.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, order.Unknown, err
	}

	before := o.Status()
	if check := h.validator.Validate(o, cmd.Status()); !check.Valid {
		metrics.OrderTransitionsRejectedTotal.Inc()
		return nil, before, check.Err()
	}

	now := h.clock.Now()
	if err = o.ChangeStatus(cmd.Status(), cmd.Note(), now); err != nil {
		return nil, before, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, before, err
	}

	note := cmd.Note()
	if note == "" {
		note = fmt.Sprintf("status changed to %s", o.Status())
	}
	entry, err := order.NewHistoryEntry(o.ID(), before, o.Status(), cmd.Actor(), note, map[string]any{
		"manual_change": true,
		"timestamp":     now.Format(time.RFC3339),
	}, now)
	if err != nil {
		return nil, before, err
	}

	if err = uow.HistoryRepository().Add(ctx, entry); err != nil {
		return nil, before, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, before, err
	}

	return o, before, nil
}
