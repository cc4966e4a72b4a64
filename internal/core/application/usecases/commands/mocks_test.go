package commands_test

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Add(ctx context.Context, entry *order.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.HistoryEntry, error) {
	args := m.Called(ctx, orderID)
	entries, _ := args.Get(0).([]*order.HistoryEntry)
	return entries, args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockOrderUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockNotificationQueue struct{ mock.Mock }

func (m *MockNotificationQueue) Enqueue(ctx context.Context, intent *notification.Intent) (kernel.UUID, error) {
	args := m.Called(ctx, intent)
	return intent.ID(), args.Error(0)
}

func (m *MockNotificationQueue) Get(ctx context.Context, id kernel.UUID) (*notification.Intent, error) {
	args := m.Called(ctx, id)
	intent, _ := args.Get(0).(*notification.Intent)
	return intent, args.Error(1)
}

func (m *MockNotificationQueue) FetchDue(
	ctx context.Context,
	limit, maxAttempts int,
	at time.Time,
) ([]*notification.Intent, error) {
	args := m.Called(ctx, limit, maxAttempts, at)
	intents, _ := args.Get(0).([]*notification.Intent)
	return intents, args.Error(1)
}

func (m *MockNotificationQueue) MarkSent(
	ctx context.Context,
	fetched *notification.Intent,
	msg notification.Message,
	at time.Time,
) error {
	args := m.Called(ctx, fetched, msg, at)
	return args.Error(0)
}

func (m *MockNotificationQueue) MarkFailedTerminal(
	ctx context.Context,
	fetched *notification.Intent,
	reason string,
	at time.Time,
) error {
	args := m.Called(ctx, fetched, reason, at)
	return args.Error(0)
}

func (m *MockNotificationQueue) IncrementAttempt(
	ctx context.Context,
	fetched *notification.Intent,
	cause string,
	maxAttempts int,
	at time.Time,
) (notification.State, error) {
	args := m.Called(ctx, fetched, cause, maxAttempts, at)
	return args.Get(0).(notification.State), args.Error(1)
}

func (m *MockNotificationQueue) PurgeSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockRenderer struct{ mock.Mock }

func (m *MockRenderer) Render(
	ctx context.Context,
	o *order.Order,
	t notification.Type,
	metadata notification.Metadata,
) (notification.Message, error) {
	args := m.Called(ctx, o, t, metadata)
	return args.Get(0).(notification.Message), args.Error(1)
}

type MockDelivery struct{ mock.Mock }

func (m *MockDelivery) Deliver(ctx context.Context, intent *notification.Intent, msg notification.Message) error {
	args := m.Called(ctx, intent, msg)
	return args.Error(0)
}

type MockDrainLock struct{ mock.Mock }

func (m *MockDrainLock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	args := m.Called(ctx)
	release, _ := args.Get(0).(func(context.Context) error)
	return release, args.Bool(1), args.Error(2)
}
