package services

import (
	"errors"
	"fmt"

	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/errs"
)

// ErrInvalidTransition is wrapped by TransitionResult.Err for rejected transitions.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionResult is the outcome of a validation. Reason is empty when Valid.
type TransitionResult struct {
	Valid  bool
	Reason string
}

// Err converts a rejected result into a validation error carrying the reason.
// It returns nil for a valid result.
func (r TransitionResult) Err() error {
	if r.Valid {
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%w: %s", ErrInvalidTransition, r.Reason))
}

func accept() TransitionResult {
	return TransitionResult{Valid: true}
}

func reject(format string, args ...any) TransitionResult {
	return TransitionResult{Reason: fmt.Sprintf(format, args...)}
}

// TransitionValidator decides whether an order may move to a requested status.
//
// Rules, checked in order:
//   - the requested status must be a known status
//   - requesting the current status is a rejected no-op
//   - nothing leaves Delivered or Cancelled
//   - Cancelled is reachable from every other status
//   - Confirmed -> Paid needs a payment proof and a payment that is not already paid
//   - otherwise only the immediate successor on the canonical chain is accepted
//
// A payment rejection leaves the order Confirmed with PaymentRejected, so the
// order can reach Paid again once a new proof is attached.
//
// Example usage:
//
//	result := services.NewTransitionValidator().Validate(o, order.Shipped)
//	if !result.Valid {
//	    return result.Err()
//	}
type TransitionValidator struct{}

func NewTransitionValidator() TransitionValidator {
	return TransitionValidator{}
}

// Validate never returns an error; callers branch on Valid.
func (v TransitionValidator) Validate(o *order.Order, requested order.Status) TransitionResult {
	if err := o.Validate(); err != nil {
		return reject("order is not valid")
	}
	if err := requested.Validate(); err != nil {
		return reject("unknown status %d", int(requested))
	}

	current := o.Status()
	if requested == current {
		return reject("order is already %s", current)
	}
	if current.IsTerminal() {
		return reject("order is %s and can no longer change status", current)
	}
	if requested == order.Cancelled {
		return accept()
	}
	if current == order.Confirmed && requested == order.Paid {
		return v.validatePaid(o)
	}

	if next, ok := current.Next(); ok && next == requested {
		return accept()
	}
	return reject("transition from %s to %s is not allowed", current, requested)
}

func (v TransitionValidator) validatePaid(o *order.Order) TransitionResult {
	if !o.HasPaymentProof() {
		return reject("order has no payment proof")
	}
	if o.PaymentStatus() == order.PaymentPaid {
		return reject("payment was already validated")
	}
	return accept()
}
