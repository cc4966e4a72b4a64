package http

import (
	"context"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/order"
)

// Use cases served by the HTTP adapter.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}

	ChangeOrderStatusHandler interface {
		Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (commands.LifecycleResult, error)
	}

	ValidatePaymentHandler interface {
		Handle(ctx context.Context, cmd commands.ValidatePaymentCommand) (commands.LifecycleResult, error)
	}

	AttachPaymentProofHandler interface {
		Handle(ctx context.Context, cmd commands.AttachPaymentProofCommand) (*order.Order, error)
	}

	DrainNotificationQueueHandler interface {
		Handle(ctx context.Context, cmd commands.DrainNotificationQueueCommand) (commands.DrainResult, error)
	}

	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}

	ListActiveOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListActiveOrdersQuery) ([]queries.ListActiveOrdersQueryResponse, error)
	}

	ListOrderHistoryHandler interface {
		Handle(ctx context.Context, query queries.ListOrderHistoryQuery) ([]queries.ListOrderHistoryQueryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder        CreateOrderHandler
	ChangeOrderStatus  ChangeOrderStatusHandler
	ValidatePayment    ValidatePaymentHandler
	AttachPaymentProof AttachPaymentProofHandler
	DrainNotifications DrainNotificationQueueHandler
	GetOrder           GetOrderHandler
	ListActiveOrders   ListActiveOrdersHandler
	ListOrderHistory   ListOrderHistoryHandler
}
