package queries

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListOrderHistoryQueryHandler struct {
	db *gorm.DB
}

func NewListOrderHistoryQueryHandler(db *gorm.DB) ListOrderHistoryQueryHandler {
	return ListOrderHistoryQueryHandler{db: db}
}

// Handle returns *errs.ObjectNotFoundError for an unknown order and an empty
// slice for an order without history.
func (h ListOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query ListOrderHistoryQuery,
) ([]ListOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)

	var exists bool
	if err := db.Raw(`SELECT EXISTS (SELECT 1 FROM orders WHERE id = ?)`, query.OrderID().Bytes()).
		Scan(&exists).Error; err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	rows, err := db.Raw(`
		SELECT
			id,
			status_before,
			status_after,
			actor_role,
			actor_name,
			note,
			metadata,
			created_at
		FROM order_history
		WHERE order_id = ?
		ORDER BY created_at, id
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ListOrderHistoryQueryResponse, 0)
	for rows.Next() {
		var (
			entry       ListOrderHistoryQueryResponse
			id          uuid.UUID
			before      int
			after       int
			role        string
			rawMetadata []byte
			createdAt   time.Time
		)
		err = rows.Scan(&id, &before, &after, &role, &entry.Actor.Name, &entry.Note, &rawMetadata, &createdAt)
		if err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		entry.StatusBefore = order.Status(before)
		entry.StatusAfter = order.Status(after)
		entry.Actor.Role = order.ActorRole(role)
		entry.CreatedAt = createdAt.UTC()

		if len(rawMetadata) > 0 {
			if err = json.Unmarshal(rawMetadata, &entry.Metadata); err != nil {
				return nil, err
			}
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
