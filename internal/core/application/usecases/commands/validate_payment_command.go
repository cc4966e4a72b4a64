package commands

import (
	"errors"
	"strings"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/guard"
)

var ErrValidatePaymentCommandIsNotConstructed = errors.New(
	"ValidatePaymentCommand must be created via NewValidatePaymentCommand constructor",
)

// ValidatePaymentCommand approves or rejects the payment proof of a confirmed order.
// The rejection reason is checked by the order itself, after the other preconditions.
type ValidatePaymentCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	approved        bool
	rejectionReason string
	validator       order.Actor

	guard guard.ConstructorGuard
}

func NewValidatePaymentCommand(
	orderID kernel.UUID,
	approved bool,
	rejectionReason string,
	validatorName string,
) (ValidatePaymentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ValidatePaymentCommand{}, err
	}

	return ValidatePaymentCommand{
		orderID:         orderID,
		approved:        approved,
		rejectionReason: strings.TrimSpace(rejectionReason),
		validator:       order.NewSellerActor(validatorName),
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ValidatePaymentCommand) Validate() error {
	return c.guard.Validate(ErrValidatePaymentCommandIsNotConstructed)
}

func (c ValidatePaymentCommand) OrderID() kernel.UUID    { return c.orderID }
func (c ValidatePaymentCommand) Approved() bool          { return c.approved }
func (c ValidatePaymentCommand) RejectionReason() string { return c.rejectionReason }
func (c ValidatePaymentCommand) Validator() order.Actor  { return c.validator }
