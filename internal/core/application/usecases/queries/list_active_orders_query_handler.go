package queries

import (
	"context"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListActiveOrdersQueryHandler(db *gorm.DB) ListActiveOrdersQueryHandler {
	return ListActiveOrdersQueryHandler{db: db}
}

func (h ListActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListActiveOrdersQuery,
) ([]ListActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]ListActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			status,
			payment_status,
			payment_proof_ref
		FROM orders
		WHERE status NOT IN (?, ?)
		ORDER BY placed_at, id
	`, int(order.Delivered), int(order.Cancelled)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp          ListActiveOrdersQueryResponse
			id            uuid.UUID
			status        int
			paymentStatus int
			proofRef      string
		)
		if err = rows.Scan(&id, &resp.Number, &status, &paymentStatus, &proofRef); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		resp.Status = order.Status(status)
		resp.PaymentStatus = order.PaymentStatus(paymentStatus)
		resp.AwaitingReview = resp.Status == order.Confirmed &&
			resp.PaymentStatus == order.PaymentPending &&
			proofRef != ""

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
