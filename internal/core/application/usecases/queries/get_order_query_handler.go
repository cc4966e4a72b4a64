package queries

import (
	"context"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns *errs.ObjectNotFoundError when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			customer_contact,
			status,
			payment_status,
			editable,
			payment_proof_ref,
			payment_rejection_reason,
			payment_validated_by,
			cancellation_reason,
			version,
			placed_at,
			confirmed_at,
			paid_at,
			preparing_at,
			shipped_at,
			received_at,
			delivered_at,
			cancelled_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetOrderQueryResponse{}, err
		}
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	var (
		resp          GetOrderQueryResponse
		id            uuid.UUID
		status        int
		paymentStatus int
		reachedAt     [8]*time.Time
	)
	err = rows.Scan(
		&id,
		&resp.Number,
		&resp.CustomerContact,
		&status,
		&paymentStatus,
		&resp.Editable,
		&resp.PaymentProofRef,
		&resp.PaymentRejectionReason,
		&resp.PaymentValidatedBy,
		&resp.CancellationReason,
		&resp.Version,
		&reachedAt[0],
		&reachedAt[1],
		&reachedAt[2],
		&reachedAt[3],
		&reachedAt[4],
		&reachedAt[5],
		&reachedAt[6],
		&reachedAt[7],
	)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.Status = order.Status(status)
	resp.PaymentStatus = order.PaymentStatus(paymentStatus)

	// column order above follows order.AllStatuses
	resp.ReachedAt = make(map[order.Status]time.Time)
	for i, s := range order.AllStatuses() {
		if reachedAt[i] != nil {
			resp.ReachedAt[s] = reachedAt[i].UTC()
		}
	}

	return resp, rows.Err()
}
