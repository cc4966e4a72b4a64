// Package orderrepo persists order aggregates and their audit trail.
package orderrepo

import (
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the row form of an order. Statuses are stored as their enum
// values; every lifecycle timestamp has its own nullable column.
type OrderDTO struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number                 string    `gorm:"uniqueIndex;not null"`
	CustomerContact        string
	Status                 int `gorm:"index"`
	PaymentStatus          int
	Editable               bool
	PaymentProofRef        string
	PaymentRejectionReason string
	PaymentValidatedBy     string
	CancellationReason     string
	Version                int `gorm:"not null;default:1"`

	PlacedAt    *time.Time
	ConfirmedAt *time.Time
	PaidAt      *time.Time
	PreparingAt *time.Time
	ShippedAt   *time.Time
	ReceivedAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// reachedAtColumns binds each status to its timestamp column.
func (dto *OrderDTO) reachedAtColumns() map[order.Status]**time.Time {
	return map[order.Status]**time.Time{
		order.Placed:    &dto.PlacedAt,
		order.Confirmed: &dto.ConfirmedAt,
		order.Paid:      &dto.PaidAt,
		order.Preparing: &dto.PreparingAt,
		order.Shipped:   &dto.ShippedAt,
		order.Received:  &dto.ReceivedAt,
		order.Delivered: &dto.DeliveredAt,
		order.Cancelled: &dto.CancelledAt,
	}
}

// HistoryDTO is one append-only audit row.
type HistoryDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid;index;not null"`
	StatusBefore int
	StatusAfter  int
	ActorRole    string
	ActorName    string
	Note         string
	Metadata     map[string]any `gorm:"serializer:json;type:jsonb"`
	CreatedAt    time.Time      `gorm:"index"`
}

func (HistoryDTO) TableName() string {
	return "order_history"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	s := aggregate.Snapshot()
	dto := OrderDTO{
		ID:                     s.ID.Bytes(),
		Number:                 s.Number,
		CustomerContact:        s.CustomerContact,
		Status:                 int(s.Status),
		PaymentStatus:          int(s.PaymentStatus),
		Editable:               s.Editable,
		PaymentProofRef:        s.PaymentProofRef,
		PaymentRejectionReason: s.PaymentRejectionReason,
		PaymentValidatedBy:     s.PaymentValidatedBy,
		CancellationReason:     s.CancellationReason,
		Version:                s.Version,
	}
	for status, column := range dto.reachedAtColumns() {
		if at, ok := s.ReachedAt[status]; ok {
			at = at.UTC()
			*column = &at
		}
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	reachedAt := make(map[order.Status]time.Time)
	for status, column := range dto.reachedAtColumns() {
		if *column != nil {
			reachedAt[status] = (*column).UTC()
		}
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                     id,
		Number:                 dto.Number,
		CustomerContact:        dto.CustomerContact,
		Status:                 order.Status(dto.Status),
		PaymentStatus:          order.PaymentStatus(dto.PaymentStatus),
		Editable:               dto.Editable,
		ReachedAt:              reachedAt,
		PaymentProofRef:        dto.PaymentProofRef,
		PaymentRejectionReason: dto.PaymentRejectionReason,
		PaymentValidatedBy:     dto.PaymentValidatedBy,
		CancellationReason:     dto.CancellationReason,
		Version:                dto.Version,
	})
}

func historyFromDomain(entry *order.HistoryEntry) HistoryDTO {
	return HistoryDTO{
		ID:           entry.ID().Bytes(),
		OrderID:      entry.OrderID().Bytes(),
		StatusBefore: int(entry.StatusBefore()),
		StatusAfter:  int(entry.StatusAfter()),
		ActorRole:    string(entry.Actor().Role),
		ActorName:    entry.Actor().Name,
		Note:         entry.Note(),
		Metadata:     entry.Metadata(),
		CreatedAt:    entry.CreatedAt().UTC(),
	}
}

func historyToDomain(dto HistoryDTO) (*order.HistoryEntry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreHistoryEntry(
		id,
		orderID,
		order.Status(dto.StatusBefore),
		order.Status(dto.StatusAfter),
		order.Actor{Role: order.ActorRole(dto.ActorRole), Name: dto.ActorName},
		dto.Note,
		dto.Metadata,
		dto.CreatedAt.UTC(),
	)
}
