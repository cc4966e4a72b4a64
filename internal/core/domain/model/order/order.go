package order

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"
)

// DefaultCancellationReason is recorded when an order is cancelled without a note.
const DefaultCancellationReason = "cancelled by administrator"

// MinRejectionReasonLength is the minimum trimmed length of a payment rejection reason.
const MinRejectionReasonLength = 10

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrPaymentProofMissing     = errors.New("order has no payment proof")
	ErrOrderNotConfirmed       = errors.New("order must be in confirmed status")
	ErrPaymentAlreadyValidated = errors.New("payment was already validated")
)

// Order is the aggregate root of the storefront order lifecycle.
//
// Invariants:
//   - PaymentPaid implies the order reached at least Confirmed
//   - the order is not editable once Paid or Cancelled; a payment rejection
//     re-opens editability so the customer can correct the order
//   - every status ever reached has a lifecycle timestamp
//
// Orders are mutated through their methods only; persistence adapters use
// Snapshot and RestoreOrder.
type Order struct {
	id              kernel.UUID
	number          string
	customerContact string

	status        Status
	paymentStatus PaymentStatus
	editable      bool

	// reachedAt holds one timestamp per status ever reached
	reachedAt map[Status]time.Time

	paymentProofRef        string
	paymentRejectionReason string
	paymentValidatedBy     string
	cancellationReason     string

	// version is the optimistic lock token observed when the order was loaded
	version int

	isConstructed bool
}

// Snapshot is the flat persisted form of an Order.
type Snapshot struct {
	ID                     kernel.UUID
	Number                 string
	CustomerContact        string
	Status                 Status
	PaymentStatus          PaymentStatus
	Editable               bool
	ReachedAt              map[Status]time.Time
	PaymentProofRef        string
	PaymentRejectionReason string
	PaymentValidatedBy     string
	CancellationReason     string
	Version                int
}

// NewOrder creates a Placed order awaiting confirmation.
func NewOrder(id kernel.UUID, number string, customerContact string, at time.Time) (*Order, error) {
	o := &Order{
		status:        Placed,
		paymentStatus: PaymentPending,
		editable:      true,
		reachedAt:     map[Status]time.Time{Placed: at},
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setCustomerContact(customerContact),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an Order from its persisted snapshot.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		editable:               s.Editable,
		reachedAt:              maps.Clone(s.ReachedAt),
		paymentProofRef:        s.PaymentProofRef,
		paymentRejectionReason: s.PaymentRejectionReason,
		paymentValidatedBy:     s.PaymentValidatedBy,
		cancellationReason:     s.CancellationReason,
		version:                s.Version,
		isConstructed:          true,
	}
	if o.reachedAt == nil {
		o.reachedAt = make(map[Status]time.Time)
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setNumber(s.Number),
		o.setCustomerContact(s.CustomerContact),
		s.Status.Validate(),
		s.PaymentStatus.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = s.Status
	o.paymentStatus = s.PaymentStatus

	return o, nil
}

// Validate ensures the Order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// Snapshot returns the persisted form of the order.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                     o.id,
		Number:                 o.number,
		CustomerContact:        o.customerContact,
		Status:                 o.status,
		PaymentStatus:          o.paymentStatus,
		Editable:               o.editable,
		ReachedAt:              maps.Clone(o.reachedAt),
		PaymentProofRef:        o.paymentProofRef,
		PaymentRejectionReason: o.paymentRejectionReason,
		PaymentValidatedBy:     o.paymentValidatedBy,
		CancellationReason:     o.cancellationReason,
		Version:                o.version,
	}
}

func (o *Order) ID() kernel.UUID                { return o.id }
func (o *Order) Number() string                 { return o.number }
func (o *Order) CustomerContact() string        { return o.customerContact }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) PaymentStatus() PaymentStatus   { return o.paymentStatus }
func (o *Order) IsEditable() bool               { return o.editable }
func (o *Order) PaymentProofRef() string        { return o.paymentProofRef }
func (o *Order) HasPaymentProof() bool          { return o.paymentProofRef != "" }
func (o *Order) PaymentRejectionReason() string { return o.paymentRejectionReason }
func (o *Order) PaymentValidatedBy() string     { return o.paymentValidatedBy }
func (o *Order) CancellationReason() string     { return o.cancellationReason }
func (o *Order) Version() int                   { return o.version }

// ReachedAt returns when the order entered status s.
func (o *Order) ReachedAt(s Status) (time.Time, bool) {
	at, ok := o.reachedAt[s]
	return at, ok
}

// BumpVersion advances the optimistic lock token after a successful conditional write.
func (o *Order) BumpVersion() {
	o.version++
}

// ChangeStatus applies an already validated transition and its side effects.
// Legality is decided by services.TransitionValidator.
func (o *Order) ChangeStatus(requested Status, note string, at time.Time) error {
	if err := requested.Validate(); err != nil {
		return err
	}

	o.status = requested
	o.reachedAt[requested] = at

	switch requested {
	case Cancelled:
		o.editable = false
		o.cancellationReason = strings.TrimSpace(note)
		if o.cancellationReason == "" {
			o.cancellationReason = DefaultCancellationReason
		}
	case Paid:
		o.paymentStatus = PaymentPaid
		o.editable = false
	default:
	}

	return nil
}

// CanValidatePayment checks the payment review preconditions in order:
// a proof is attached, the order is Confirmed and the payment is not already Paid.
func (o *Order) CanValidatePayment() error {
	if !o.HasPaymentProof() {
		return errs.NewValueIsInvalidErrorWithCause("payment proof", ErrPaymentProofMissing)
	}
	if o.status != Confirmed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%w (current: %s)", ErrOrderNotConfirmed, o.status),
		)
	}
	if o.paymentStatus == PaymentPaid {
		return errs.NewValueIsInvalidErrorWithCause("payment status", ErrPaymentAlreadyValidated)
	}
	return nil
}

// ApprovePayment moves a Confirmed order with a reviewed proof to Paid.
func (o *Order) ApprovePayment(validatedBy string, at time.Time) error {
	if err := o.CanValidatePayment(); err != nil {
		return err
	}

	o.status = Paid
	o.paymentStatus = PaymentPaid
	o.reachedAt[Paid] = at
	o.paymentValidatedBy = validatedBy
	o.paymentRejectionReason = ""
	o.editable = false
	return nil
}

// RejectPayment keeps the order Confirmed, records the reason and drops the stale
// proof so the customer has to upload a new one.
func (o *Order) RejectPayment(reason string) error {
	if err := o.CanValidatePayment(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < MinRejectionReasonLength {
		return errs.NewValueIsInvalidErrorWithCause(
			"rejection reason",
			fmt.Errorf("must have at least %d characters", MinRejectionReasonLength),
		)
	}

	o.paymentStatus = PaymentRejected
	o.paymentRejectionReason = reason
	o.paymentProofRef = ""
	o.editable = true
	return nil
}

// AttachPaymentProof records the customer's uploaded payment evidence for review.
func (o *Order) AttachPaymentProof(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errs.NewValueIsRequiredError("payment proof reference")
	}
	if o.status != Confirmed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%w (current: %s)", ErrOrderNotConfirmed, o.status),
		)
	}
	if o.paymentStatus == PaymentPaid {
		return errs.NewValueIsInvalidErrorWithCause("payment status", ErrPaymentAlreadyValidated)
	}

	o.paymentProofRef = ref
	o.paymentStatus = PaymentPending
	o.paymentRejectionReason = ""
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.number = number
	return nil
}

func (o *Order) setCustomerContact(contact string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return errs.NewValueIsRequiredError("customer contact")
	}
	o.customerContact = contact
	return nil
}
