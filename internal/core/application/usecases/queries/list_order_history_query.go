package queries

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/guard"
)

var ErrListOrderHistoryQueryIsNotConstructed = errors.New(
	"ListOrderHistoryQuery must be created via NewListOrderHistoryQuery constructor",
)

// ListOrderHistoryQuery retrieves the audit trail of one order, oldest entry first.
type ListOrderHistoryQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewListOrderHistoryQuery(orderID kernel.UUID) (ListOrderHistoryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return ListOrderHistoryQuery{}, err
	}
	return ListOrderHistoryQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrListOrderHistoryQueryIsNotConstructed)
}

func (q ListOrderHistoryQuery) OrderID() kernel.UUID { return q.orderID }

type ListOrderHistoryQueryResponse struct {
	ID           kernel.UUID
	StatusBefore order.Status
	StatusAfter  order.Status
	Actor        order.Actor
	Note         string
	Metadata     map[string]any
	CreatedAt    time.Time
}
