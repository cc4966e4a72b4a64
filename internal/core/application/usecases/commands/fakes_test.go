package commands_test

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/ports"
	"storefront/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

// memoryStore keeps orders and their history in memory. Writes are applied
// immediately; Rollback after Commit is a no-op like the gorm unit of work.
type memoryStore struct {
	mu      sync.Mutex
	orders  map[kernel.UUID]order.Snapshot
	history []*order.HistoryEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orders: make(map[kernel.UUID]order.Snapshot)}
}

func (s *memoryStore) Create() commands.OrderUoW { return memoryUoW{store: s} }

func (s *memoryStore) put(t *testing.T, o *order.Order) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID()] = o.Snapshot()
}

func (s *memoryStore) get(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := memoryOrders{store: s}.Get(t.Context(), id)
	require.NoError(t, err)
	return o
}

type memoryUoW struct{ store *memoryStore }

func (memoryUoW) Begin(context.Context) error    { return nil }
func (memoryUoW) Commit(context.Context) error   { return nil }
func (memoryUoW) Rollback(context.Context) error { return nil }
func (u memoryUoW) OrderRepository() ports.OrderRepository {
	return memoryOrders{store: u.store}
}
func (u memoryUoW) HistoryRepository() ports.HistoryRepository {
	return memoryHistory{store: u.store}
}

type memoryOrders struct{ store *memoryStore }

func (r memoryOrders) Add(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.orders[o.ID()] = o.Snapshot()
	return nil
}

func (r memoryOrders) Update(_ context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[o.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	if stored.Version != o.Version() {
		return errs.NewConflictError("order", o.ID().String())
	}
	o.BumpVersion()
	r.store.orders[o.ID()] = o.Snapshot()
	return nil
}

func (r memoryOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(stored)
}

type memoryHistory struct{ store *memoryStore }

func (r memoryHistory) Add(_ context.Context, entry *order.HistoryEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.history = append(r.store.history, entry)
	return nil
}

func (r memoryHistory) ListByOrder(_ context.Context, orderID kernel.UUID) ([]*order.HistoryEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var entries []*order.HistoryEntry
	for _, e := range r.store.history {
		if e.OrderID().IsEqual(orderID) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// memoryQueue mirrors the conditional-update semantics of the postgres queue.
type memoryQueue struct {
	mu      sync.Mutex
	intents map[kernel.UUID]notification.Snapshot
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{intents: make(map[kernel.UUID]notification.Snapshot)}
}

func (q *memoryQueue) Enqueue(_ context.Context, intent *notification.Intent) (kernel.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.intents[intent.ID()] = intent.Snapshot()
	return intent.ID(), nil
}

func (q *memoryQueue) Get(_ context.Context, id kernel.UUID) (*notification.Intent, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	stored, ok := q.intents[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("notification", id.String())
	}
	return notification.RestoreIntent(stored)
}

func (q *memoryQueue) all() []notification.Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notification.Snapshot, 0, len(q.intents))
	for _, s := range q.intents {
		out = append(out, s)
	}
	return out
}

func (q *memoryQueue) FetchDue(
	_ context.Context,
	limit, maxAttempts int,
	at time.Time,
) ([]*notification.Intent, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	due := make([]notification.Snapshot, 0)
	for _, s := range q.intents {
		if s.State == notification.StatePending && s.Attempts < maxAttempts && !s.ScheduledAt.After(at) {
			due = append(due, s)
		}
	}
	slices.SortFunc(due, func(a, b notification.Snapshot) int {
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}

	intents := make([]*notification.Intent, 0, len(due))
	for _, s := range due {
		intent, err := notification.RestoreIntent(s)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func (q *memoryQueue) apply(fetched *notification.Intent, transition func(*notification.Intent) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	stored, ok := q.intents[fetched.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("notification", fetched.ID().String())
	}
	if stored.State != notification.StatePending || stored.Attempts != fetched.Attempts() {
		return errs.NewConflictError("notification", fetched.ID().String())
	}

	updated, err := notification.RestoreIntent(fetched.Snapshot())
	if err != nil {
		return err
	}
	if err = transition(updated); err != nil {
		return err
	}
	q.intents[fetched.ID()] = updated.Snapshot()
	*fetched = *updated
	return nil
}

func (q *memoryQueue) MarkSent(
	_ context.Context,
	fetched *notification.Intent,
	msg notification.Message,
	at time.Time,
) error {
	return q.apply(fetched, func(i *notification.Intent) error { return i.MarkSent(msg, at) })
}

func (q *memoryQueue) MarkFailedTerminal(
	_ context.Context,
	fetched *notification.Intent,
	reason string,
	at time.Time,
) error {
	return q.apply(fetched, func(i *notification.Intent) error { return i.MarkFailedTerminal(reason, at) })
}

func (q *memoryQueue) IncrementAttempt(
	_ context.Context,
	fetched *notification.Intent,
	cause string,
	maxAttempts int,
	at time.Time,
) (notification.State, error) {
	err := q.apply(fetched, func(i *notification.Intent) error { return i.IncrementAttempt(cause, maxAttempts, at) })
	if err != nil {
		return notification.StateUnknown, err
	}
	return fetched.State(), nil
}

func (q *memoryQueue) PurgeSentBefore(_ context.Context, cutoff time.Time) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var purged int64
	for id, s := range q.intents {
		if s.State == notification.StateSent && s.SentAt != nil && s.SentAt.Before(cutoff) {
			delete(q.intents, id)
			purged++
		}
	}
	return purged, nil
}

type renderFunc func(ctx context.Context, o *order.Order, t notification.Type) (notification.Message, error)

func (f renderFunc) Render(
	ctx context.Context,
	o *order.Order,
	t notification.Type,
	_ notification.Metadata,
) (notification.Message, error) {
	return f(ctx, o, t)
}

func okRenderer() renderFunc {
	return func(_ context.Context, o *order.Order, t notification.Type) (notification.Message, error) {
		return notification.Message{
			Text:        t.String() + " " + o.Number(),
			DeliveryURL: "https://wa.me/51987654321",
		}, nil
	}
}

// newTestOrder restores an order in status with an optional payment proof.
func newTestOrder(t *testing.T, status order.Status, proof string, payment order.PaymentStatus) *order.Order {
	t.Helper()

	o, err := order.RestoreOrder(order.Snapshot{
		ID:              kernel.NewUUID(),
		Number:          "PED-0001",
		CustomerContact: "+51 987 654 321",
		Status:          status,
		PaymentStatus:   payment,
		Editable:        status != order.Paid && status != order.Cancelled,
		ReachedAt:       map[order.Status]time.Time{order.Placed: now.Add(-time.Hour)},
		PaymentProofRef: proof,
		Version:         1,
	})
	require.NoError(t, err)
	return o
}

// lifecycle wires the commands against in-memory adapters.
type lifecycle struct {
	store    *memoryStore
	queue    *memoryQueue
	drain    commands.DrainNotificationQueueCommandHandler
	change   commands.ChangeOrderStatusCommandHandler
	validate commands.ValidatePaymentCommandHandler
}

func newLifecycle(renderer ports.MessageRenderer) lifecycle {
	store := newMemoryStore()
	queue := newMemoryQueue()
	clock := fixedClock{now: now}
	notifier := commands.NewNotifier(queue, clock, discardLogger())

	return lifecycle{
		store: store,
		queue: queue,
		drain: commands.NewDrainNotificationQueueCommandHandler(
			queue, memoryOrders{store: store}, renderer, nil, nil, clock,
			commands.DrainOptions{IntentTimeout: time.Second}, discardLogger(),
		),
		change:   commands.NewChangeOrderStatusCommandHandler(store, notifier, clock, discardLogger()),
		validate: commands.NewValidatePaymentCommandHandler(store, notifier, clock, discardLogger()),
	}
}
