package ports

import (
	"context"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
)

// NotificationQueue is the durable store of notification intents.
//
// Every outcome write is conditional on the state and attempt count observed
// when the intent was fetched. A write that loses against a concurrent worker
// returns *errs.ConflictError and leaves the stored record untouched; callers
// skip the intent instead of retrying. A successful write also applies the
// transition to the fetched intent.
type NotificationQueue interface {
	// Enqueue stores a new Pending intent with zero attempts.
	Enqueue(ctx context.Context, intent *notification.Intent) (kernel.UUID, error)

	// Get returns *errs.ObjectNotFoundError when the intent does not exist.
	Get(ctx context.Context, id kernel.UUID) (*notification.Intent, error)

	// FetchDue returns at most limit Pending intents with fewer than maxAttempts
	// attempts that are scheduled no later than now, highest priority first and
	// oldest first within a priority.
	FetchDue(ctx context.Context, limit, maxAttempts int, now time.Time) ([]*notification.Intent, error)

	// MarkSent records the rendered message of a fetched intent.
	MarkSent(ctx context.Context, fetched *notification.Intent, msg notification.Message, at time.Time) error

	// MarkFailedTerminal records a failure that a retry cannot fix.
	MarkFailedTerminal(ctx context.Context, fetched *notification.Intent, reason string, at time.Time) error

	// IncrementAttempt records a transient failure and returns the resulting state:
	// Failed once the attempt count reaches maxAttempts, Pending otherwise.
	IncrementAttempt(
		ctx context.Context,
		fetched *notification.Intent,
		cause string,
		maxAttempts int,
		at time.Time,
	) (notification.State, error)

	// PurgeSentBefore deletes Sent intents whose sentAt is before cutoff and
	// returns how many were removed.
	PurgeSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MessageRenderer turns an order event into a customer message.
// A message without a delivery target, or an error wrapping errs.ErrTerminal,
// means the intent can never be rendered.
type MessageRenderer interface {
	Render(
		ctx context.Context,
		o *order.Order,
		notificationType notification.Type,
		metadata notification.Metadata,
	) (notification.Message, error)
}

// MessageDelivery hands a rendered message over to the customer channel.
type MessageDelivery interface {
	Deliver(ctx context.Context, intent *notification.Intent, msg notification.Message) error
}

// DrainLock keeps drain passes from overlapping across processes.
type DrainLock interface {
	// TryAcquire returns acquired=false without error when another pass holds the lock.
	TryAcquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}
