// Package ports defines the contracts between the storefront core and its adapters.
package ports

import (
	"context"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the order only if the stored version still equals
	// aggregate.Version(), then advances the aggregate's version.
	// A lost race returns *errs.ConflictError; a missing row returns *errs.ObjectNotFoundError.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns *errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// HistoryRepository is the append-only audit trail of order lifecycle changes.
type HistoryRepository interface {
	Add(ctx context.Context, entry *order.HistoryEntry) error

	// ListByOrder returns the entries of one order, oldest first.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.HistoryEntry, error)
}
