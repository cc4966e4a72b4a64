package commands

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/services"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/metrics"

	"go.opentelemetry.io/otel/attribute"
)

// ValidatePaymentCommandHandler reviews the payment proof of a confirmed order.
//
// Preconditions are checked in this order, each with its own error: the order
// exists, it has a payment proof, it is confirmed, its payment is not already
// paid and, for a rejection, the reason is long enough.
//
// Approval moves the order to paid and queues pago_validado. Rejection keeps the
// order confirmed, drops the proof so the customer uploads a new one and queues
// pago_rechazado. Both branches write one history entry.
type ValidatePaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	validator  services.TransitionValidator
	notifier   *Notifier
	clock      ports.Clock
	logger     *slog.Logger
}

func NewValidatePaymentCommandHandler(
	uowFactory OrderUoWFactory,
	notifier *Notifier,
	clock ports.Clock,
	logger *slog.Logger,
) ValidatePaymentCommandHandler {
	return ValidatePaymentCommandHandler{
		uowFactory: uowFactory,
		validator:  services.NewTransitionValidator(),
		notifier:   notifier,
		clock:      clock,
		logger:     logger.With("component", "validate_payment"),
	}
}

func (h ValidatePaymentCommandHandler) Handle(
	ctx context.Context,
	cmd ValidatePaymentCommand,
) (result LifecycleResult, err error) {
	if err = cmd.Validate(); err != nil {
		return LifecycleResult{}, err
	}

	ctx, span := tracer.Start(ctx, "ValidatePayment")
	span.SetAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.Bool("payment.approved", cmd.Approved()),
	)
	defer func() { endSpan(span, err) }()

	o, before, err := h.apply(ctx, cmd)
	if err != nil {
		return LifecycleResult{}, err
	}

	metrics.OrderTransitionsTotal.WithLabelValues(before.String(), o.Status().String()).Inc()
	h.logger.InfoContext(ctx, "payment reviewed",
		"order_id", o.ID().String(), "approved", cmd.Approved(), "validator", cmd.Validator().Name)

	notificationType := notification.TypePaymentApproved
	metadata := notification.Metadata{}
	if !cmd.Approved() {
		notificationType = notification.TypePaymentRejected
		metadata[notification.MetadataReason] = o.PaymentRejectionReason()
	}

	queued := h.notifier.Notify(ctx, o, notificationType, metadata)
	span.SetAttributes(attribute.Bool("notification.queued", queued))

	return LifecycleResult{Order: o, NotificationQueued: queued}, nil
}

func (h ValidatePaymentCommandHandler) apply(
	ctx context.Context,
	cmd ValidatePaymentCommand,
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
	proofRef := o.PaymentProofRef()
	now := h.clock.Now()

	var note string
	if cmd.Approved() {
		if err = o.CanValidatePayment(); err != nil {
			return nil, before, err
		}
		if check := h.validator.Validate(o, order.Paid); !check.Valid {
			return nil, before, check.Err()
		}
		if err = o.ApprovePayment(cmd.Validator().Name, now); err != nil {
			return nil, before, err
		}
		note = "payment validated"
	} else {
		if err = o.RejectPayment(cmd.RejectionReason()); err != nil {
			return nil, before, err
		}
		note = "payment rejected: " + o.PaymentRejectionReason()
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, before, err
	}

	entry, err := order.NewHistoryEntry(o.ID(), before, o.Status(), cmd.Validator(), note, map[string]any{
		"approved":          cmd.Approved(),
		"rejection_reason":  o.PaymentRejectionReason(),
		"payment_proof_ref": proofRef,
		"timestamp":         now.Format(time.RFC3339),
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
