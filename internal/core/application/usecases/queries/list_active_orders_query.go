package queries

import (
	"errors"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/guard"
)

var ErrListActiveOrdersQueryIsNotConstructed = errors.New(
	"ListActiveOrdersQuery must be created via NewListActiveOrdersQuery constructor",
)

// ListActiveOrdersQuery retrieves every order that is neither delivered nor cancelled,
// oldest first. It backs the seller's work queue.
type ListActiveOrdersQuery struct {
	guard guard.ConstructorGuard
}

func NewListActiveOrdersQuery() ListActiveOrdersQuery {
	return ListActiveOrdersQuery{guard: guard.NewConstructorGuard()}
}

func (q ListActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListActiveOrdersQueryIsNotConstructed)
}

type ListActiveOrdersQueryResponse struct {
	ID            kernel.UUID
	Number        string
	Status        order.Status
	PaymentStatus order.PaymentStatus
	// AwaitingReview is set for confirmed orders with a proof waiting for the seller.
	AwaitingReview bool
}
