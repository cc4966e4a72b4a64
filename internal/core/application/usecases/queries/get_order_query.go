// Package queries holds the read models of the storefront. Handlers read
// straight from the database with SQL and never go through the aggregates.
package queries

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order with its payment review state and lifecycle timestamps.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

type GetOrderQueryResponse struct {
	ID                     kernel.UUID
	Number                 string
	CustomerContact        string
	Status                 order.Status
	PaymentStatus          order.PaymentStatus
	Editable               bool
	PaymentProofRef        string
	PaymentRejectionReason string
	PaymentValidatedBy     string
	CancellationReason     string
	Version                int
	// ReachedAt holds the timestamp of every status the order has reached.
	ReachedAt map[order.Status]time.Time
}
