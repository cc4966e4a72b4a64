package order

import (
	"fmt"

	"storefront/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// Canonical forward chain:
//
//	Placed -> Confirmed -> Paid -> Preparing -> Shipped -> Received -> Delivered
//
// Cancelled is reachable from every non-terminal status. Delivered and Cancelled
// are terminal. The string form is the stable wire value.
type Status int

const (
	// Unknown catches uninitialized or unparsable values.
	Unknown Status = iota
	Placed
	Confirmed
	Paid
	Preparing
	Shipped
	Received
	Delivered
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Placed:    "placed",
		Confirmed: "confirmed",
		Paid:      "paid",
		Preparing: "preparing",
		Shipped:   "shipped",
		Received:  "received",
		Delivered: "delivered",
		Cancelled: "cancelled",
	}
}

// getForwardChain maps every non-terminal status on the canonical chain to its successor.
func getForwardChain() map[Status]Status {
	//nolint:exhaustive // terminal statuses have no successor
	return map[Status]Status{
		Placed:    Confirmed,
		Confirmed: Paid,
		Paid:      Preparing,
		Preparing: Shipped,
		Shipped:   Received,
		Received:  Delivered,
	}
}

// AllStatuses lists the known statuses in canonical order, Cancelled last.
func AllStatuses() []Status {
	return []Status{Placed, Confirmed, Paid, Preparing, Shipped, Received, Delivered, Cancelled}
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a known status", s))
}

// Validate checks the value is a member of the status enum.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Next returns the successor of s on the canonical chain.
func (s Status) Next() (Status, bool) {
	next, ok := getForwardChain()[s]
	return next, ok
}

// PaymentStatus tracks the payment proof review for an order.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	PaymentPaid
	PaymentRejected
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentPending:  "pending",
		PaymentPaid:     "paid",
		PaymentRejected: "rejected",
	}
}

// ParsePaymentStatus converts a wire value into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, str := range getPaymentStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"payment status is invalid",
		fmt.Errorf("%q is not a known payment status", s),
	)
}

func (p PaymentStatus) Validate() error {
	if _, ok := getPaymentStatusStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status is invalid",
			fmt.Errorf("%d is not a valid payment status", p),
		)
	}
	return nil
}

func (p PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[p]; ok {
		return str
	}
	return "unknown"
}
