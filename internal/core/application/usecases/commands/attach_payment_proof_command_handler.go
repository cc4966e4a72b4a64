package commands

import (
	"context"
	"time"

	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/ports"
)

// AttachPaymentProofCommandHandler stores the customer's payment proof on a
// confirmed order and puts the payment back into review. It writes a history
// entry and queues no notification.
type AttachPaymentProofCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewAttachPaymentProofCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) AttachPaymentProofCommandHandler {
	return AttachPaymentProofCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h AttachPaymentProofCommandHandler) Handle(
	ctx context.Context,
	cmd AttachPaymentProofCommand,
) (o *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AttachPaymentProof")
	defer func() { endSpan(span, err) }()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err = uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = o.AttachPaymentProof(cmd.Reference()); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	actor := order.Actor{Role: order.ActorCustomer, Name: o.CustomerContact()}
	entry, err := order.NewHistoryEntry(o.ID(), o.Status(), o.Status(), actor, "payment proof uploaded",
		map[string]any{
			"payment_proof_ref": cmd.Reference(),
			"timestamp":         now.Format(time.RFC3339),
		}, now)
	if err != nil {
		return nil, err
	}

	if err = uow.HistoryRepository().Add(ctx, entry); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
