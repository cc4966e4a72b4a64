package notification

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"
)

const (
	// MaxAttempts caps automatic processing of an intent.
	MaxAttempts = 3

	// DefaultBatchSize bounds one drain pass.
	DefaultBatchSize = 10

	// DefaultRetention is how long sent intents are kept before the janitor purges them.
	DefaultRetention = 7 * 24 * time.Hour
)

// Metadata keys understood by the message renderer.
const (
	MetadataNote   = "note"
	MetadataReason = "reason"
)

var ErrIntentIsNotConstructed = errors.New("Intent must be created via NewIntent constructor")

// Metadata is the opaque payload handed to the renderer.
type Metadata map[string]string

// Message is the renderer output recorded when an intent is sent.
type Message struct {
	Text        string
	DeliveryURL string
}

// IsDeliverable reports whether the message has a usable delivery target.
func (m Message) IsDeliverable() bool {
	return strings.TrimSpace(m.DeliveryURL) != ""
}

// Intent is a durable obligation to notify a customer of one event.
//
// State moves Pending -> Sent, Pending -> Failed or stays Pending with one more
// attempt. Attempts never decrease and an intent that reached MaxAttempts is Failed.
type Intent struct {
	id               kernel.UUID
	orderID          kernel.UUID
	destination      string
	notificationType Type
	priority         Priority
	state            State
	attempts         int
	scheduledAt      time.Time
	createdAt        time.Time
	sentAt           *time.Time
	lastAttemptAt    *time.Time
	lastError        string
	message          Message
	metadata         Metadata

	isConstructed bool
}

// Snapshot is the flat persisted form of an Intent.
type Snapshot struct {
	ID            kernel.UUID
	OrderID       kernel.UUID
	Destination   string
	Type          Type
	Priority      Priority
	State         State
	Attempts      int
	ScheduledAt   time.Time
	CreatedAt     time.Time
	SentAt        *time.Time
	LastAttemptAt *time.Time
	LastError     string
	Message       Message
	Metadata      Metadata
}

// NewIntent creates a Pending intent scheduled for immediate processing.
func NewIntent(
	orderID kernel.UUID,
	destination string,
	notificationType Type,
	priority Priority,
	metadata Metadata,
	at time.Time,
) (*Intent, error) {
	return RestoreIntent(Snapshot{
		ID:          kernel.NewUUID(),
		OrderID:     orderID,
		Destination: destination,
		Type:        notificationType,
		Priority:    priority,
		State:       StatePending,
		ScheduledAt: at,
		CreatedAt:   at,
		Metadata:    metadata,
	})
}

// RestoreIntent rebuilds an Intent from its persisted snapshot.
func RestoreIntent(s Snapshot) (*Intent, error) {
	var attemptsErr error
	if s.Attempts < 0 {
		attemptsErr = errs.NewValueIsOutOfRangeError("attempts", s.Attempts, 0, MaxAttempts)
	}
	if err := errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.Type.Validate(),
		s.Priority.Validate(),
		s.State.Validate(),
		attemptsErr,
	); err != nil {
		return nil, err
	}

	return &Intent{
		id:               s.ID,
		orderID:          s.OrderID,
		destination:      strings.TrimSpace(s.Destination),
		notificationType: s.Type,
		priority:         s.Priority,
		state:            s.State,
		attempts:         s.Attempts,
		scheduledAt:      s.ScheduledAt,
		createdAt:        s.CreatedAt,
		sentAt:           s.SentAt,
		lastAttemptAt:    s.LastAttemptAt,
		lastError:        s.LastError,
		message:          s.Message,
		metadata:         maps.Clone(s.Metadata),
		isConstructed:    true,
	}, nil
}

func (i *Intent) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrIntentIsNotConstructed
	}
	return nil
}

func (i *Intent) Snapshot() Snapshot {
	return Snapshot{
		ID:            i.id,
		OrderID:       i.orderID,
		Destination:   i.destination,
		Type:          i.notificationType,
		Priority:      i.priority,
		State:         i.state,
		Attempts:      i.attempts,
		ScheduledAt:   i.scheduledAt,
		CreatedAt:     i.createdAt,
		SentAt:        i.sentAt,
		LastAttemptAt: i.lastAttemptAt,
		LastError:     i.lastError,
		Message:       i.message,
		Metadata:      maps.Clone(i.metadata),
	}
}

func (i *Intent) ID() kernel.UUID           { return i.id }
func (i *Intent) OrderID() kernel.UUID      { return i.orderID }
func (i *Intent) Destination() string       { return i.destination }
func (i *Intent) Type() Type                { return i.notificationType }
func (i *Intent) Priority() Priority        { return i.priority }
func (i *Intent) State() State              { return i.state }
func (i *Intent) Attempts() int             { return i.attempts }
func (i *Intent) ScheduledAt() time.Time    { return i.scheduledAt }
func (i *Intent) CreatedAt() time.Time      { return i.createdAt }
func (i *Intent) SentAt() *time.Time        { return i.sentAt }
func (i *Intent) LastAttemptAt() *time.Time { return i.lastAttemptAt }
func (i *Intent) LastError() string         { return i.lastError }
func (i *Intent) Message() Message          { return i.message }
func (i *Intent) Metadata() Metadata        { return maps.Clone(i.metadata) }

// IsDue reports whether a drain pass may pick the intent up.
func (i *Intent) IsDue(now time.Time, maxAttempts int) bool {
	return i.state == StatePending && i.attempts < maxAttempts && !i.scheduledAt.After(now)
}

// MarkSent records a successful dispatch.
func (i *Intent) MarkSent(msg Message, at time.Time) error {
	if err := i.beginAttempt(at); err != nil {
		return err
	}
	i.state = StateSent
	i.sentAt = &at
	i.message = msg
	i.lastError = ""
	return nil
}

// MarkFailedTerminal records a failure that a retry cannot fix.
func (i *Intent) MarkFailedTerminal(reason string, at time.Time) error {
	if err := i.beginAttempt(at); err != nil {
		return err
	}
	i.state = StateFailed
	i.lastError = reason
	return nil
}

// IncrementAttempt records a transient failure. The intent stays Pending until
// the attempt count reaches maxAttempts.
func (i *Intent) IncrementAttempt(cause string, maxAttempts int, at time.Time) error {
	if err := i.beginAttempt(at); err != nil {
		return err
	}
	i.state = StateAfterAttempt(i.attempts, maxAttempts)
	i.lastError = cause
	return nil
}

// StateAfterAttempt returns the state of an intent whose failed attempts now total attempts.
func StateAfterAttempt(attempts, maxAttempts int) State {
	if attempts >= maxAttempts {
		return StateFailed
	}
	return StatePending
}

func (i *Intent) beginAttempt(at time.Time) error {
	if i.state != StatePending {
		return errs.NewValueIsInvalidErrorWithCause(
			"state",
			fmt.Errorf("intent %s is %s, only pending intents can be processed", i.id, i.state),
		)
	}
	i.attempts++
	i.lastAttemptAt = &at
	return nil
}
