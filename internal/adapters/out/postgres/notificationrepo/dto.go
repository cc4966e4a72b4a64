// Package notificationrepo is the postgres-backed notification queue.
package notificationrepo

import (
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

// IntentDTO is the row form of a notification intent. Type and state are stored
// as wire values, priority as its rank so higher sorts first.
type IntentDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Destination   string
	Type          string `gorm:"not null"`
	Priority      int    `gorm:"not null;index:idx_notification_intents_due,priority:2"`
	State         string `gorm:"not null;index:idx_notification_intents_due,priority:1"`
	Attempts      int    `gorm:"not null;default:0"`
	ScheduledAt   time.Time
	CreatedAt     time.Time `gorm:"index:idx_notification_intents_due,priority:3"`
	SentAt        *time.Time
	LastAttemptAt *time.Time
	LastError     string
	RenderedText  string
	DeliveryURL   string
	Metadata      notification.Metadata `gorm:"serializer:json;type:jsonb"`
}

func (IntentDTO) TableName() string {
	return "notification_intents"
}

func fromDomain(intent *notification.Intent) IntentDTO {
	s := intent.Snapshot()
	return IntentDTO{
		ID:            s.ID.Bytes(),
		OrderID:       s.OrderID.Bytes(),
		Destination:   s.Destination,
		Type:          s.Type.String(),
		Priority:      s.Priority.Rank(),
		State:         s.State.String(),
		Attempts:      s.Attempts,
		ScheduledAt:   s.ScheduledAt.UTC(),
		CreatedAt:     s.CreatedAt.UTC(),
		SentAt:        utcPtr(s.SentAt),
		LastAttemptAt: utcPtr(s.LastAttemptAt),
		LastError:     s.LastError,
		RenderedText:  s.Message.Text,
		DeliveryURL:   s.Message.DeliveryURL,
		Metadata:      s.Metadata,
	}
}

func toDomain(dto IntentDTO) (*notification.Intent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	t, err := notification.ParseType(dto.Type)
	if err != nil {
		return nil, err
	}
	state, err := notification.ParseState(dto.State)
	if err != nil {
		return nil, err
	}

	return notification.RestoreIntent(notification.Snapshot{
		ID:            id,
		OrderID:       orderID,
		Destination:   dto.Destination,
		Type:          t,
		Priority:      notification.Priority(dto.Priority),
		State:         state,
		Attempts:      dto.Attempts,
		ScheduledAt:   dto.ScheduledAt.UTC(),
		CreatedAt:     dto.CreatedAt.UTC(),
		SentAt:        utcPtr(dto.SentAt),
		LastAttemptAt: utcPtr(dto.LastAttemptAt),
		LastError:     dto.LastError,
		Message:       notification.Message{Text: dto.RenderedText, DeliveryURL: dto.DeliveryURL},
		Metadata:      dto.Metadata,
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
