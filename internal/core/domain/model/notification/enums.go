package notification

import (
	"fmt"

	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/errs"
)

// Type identifies the customer-facing event an intent announces and selects
// the message template.
type Type int

const (
	// TypeNone marks statuses that do not notify the customer.
	TypeNone Type = iota
	TypeOrderConfirmed
	TypeOrderPreparing
	TypeOrderShipped
	TypeOrderCancelled
	TypePaymentApproved
	TypePaymentRejected
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		TypeOrderConfirmed:  "pedido_confirmado",
		TypeOrderPreparing:  "pedido_preparando",
		TypeOrderShipped:    "pedido_enviado",
		TypeOrderCancelled:  "pedido_cancelado",
		TypePaymentApproved: "pago_validado",
		TypePaymentRejected: "pago_rechazado",
	}
}

// getStatusTypes is total over the order status enum.
func getStatusTypes() map[order.Status]Type {
	return map[order.Status]Type{
		order.Placed:    TypeNone,
		order.Confirmed: TypeOrderConfirmed,
		order.Paid:      TypeNone,
		order.Preparing: TypeOrderPreparing,
		order.Shipped:   TypeOrderShipped,
		order.Received:  TypeNone,
		order.Delivered: TypeNone,
		order.Cancelled: TypeOrderCancelled,
	}
}

// TypeForStatus returns the notification announcing a transition into s,
// or TypeNone when the status is silent or unknown.
func TypeForStatus(s order.Status) Type {
	return getStatusTypes()[s]
}

// PriorityForType returns the queue priority of an event.
func PriorityForType(t Type) Priority {
	switch t {
	case TypeOrderCancelled, TypePaymentApproved, TypePaymentRejected:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func ParseType(s string) (Type, error) {
	for t, str := range getTypeStrings() {
		if str == s {
			return t, nil
		}
	}
	return TypeNone, errs.NewValueIsInvalidErrorWithCause("notification type", fmt.Errorf("%q is not a known type", s))
}

// Validate rejects TypeNone: an intent always announces a concrete event.
func (t Type) Validate() error {
	if _, ok := getTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("notification type", fmt.Errorf("%d is not a valid type", t))
	}
	return nil
}

func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "none"
}

// Priority orders the queue. The numeric value is the persisted rank, higher first.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityMedium
	PriorityHigh
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityMedium: "media",
		PriorityHigh:   "alta",
	}
}

func ParsePriority(s string) (Priority, error) {
	for p, str := range getPriorityStrings() {
		if str == s {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a known priority", s))
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "unknown"
}

// Rank is the sort key used by the queue store.
func (p Priority) Rank() int {
	return int(p)
}

// State is the processing state of an intent. Pending is the only non-terminal state.
type State int

const (
	StateUnknown State = iota
	StatePending
	StateSent
	StateFailed
)

func getStateStrings() map[State]string {
	return map[State]string{
		StatePending: "pending",
		StateSent:    "sent",
		StateFailed:  "failed",
	}
}

func ParseState(s string) (State, error) {
	for st, str := range getStateStrings() {
		if str == s {
			return st, nil
		}
	}
	return StateUnknown, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a known state", s))
}

func (s State) Validate() error {
	if _, ok := getStateStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%d is not a valid state", s))
	}
	return nil
}

func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func (s State) IsTerminal() bool {
	return s == StateSent || s == StateFailed
}
