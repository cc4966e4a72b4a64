package commands

import (
	"errors"
	"strings"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/guard"
)

var ErrAttachPaymentProofCommandIsNotConstructed = errors.New(
	"AttachPaymentProofCommand must be created via NewAttachPaymentProofCommand constructor",
)

// AttachPaymentProofCommand records the reference of an uploaded payment proof.
// The upload itself happens outside the service; only the reference is stored.
type AttachPaymentProofCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	reference string

	guard guard.ConstructorGuard
}

func NewAttachPaymentProofCommand(orderID kernel.UUID, reference string) (AttachPaymentProofCommand, error) {
	reference = strings.TrimSpace(reference)

	var referenceErr error
	if reference == "" {
		referenceErr = errs.NewValueIsRequiredError("payment_proof_ref")
	}
	if err := errors.Join(orderID.Validate(), referenceErr); err != nil {
		return AttachPaymentProofCommand{}, err
	}

	return AttachPaymentProofCommand{
		orderID:   orderID,
		reference: reference,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AttachPaymentProofCommand) Validate() error {
	return c.guard.Validate(ErrAttachPaymentProofCommandIsNotConstructed)
}

func (c AttachPaymentProofCommand) OrderID() kernel.UUID { return c.orderID }
func (c AttachPaymentProofCommand) Reference() string    { return c.reference }
