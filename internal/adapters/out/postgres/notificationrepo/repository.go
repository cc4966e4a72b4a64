package notificationrepo

import (
	"context"
	"errors"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/pkg/errs"

	"gorm.io/gorm"
)

// outcomeColumns are the columns an attempt may change.
var outcomeColumns = []string{
	"state", "attempts", "sent_at", "last_attempt_at", "last_error", "rendered_text", "delivery_url",
}

// GormNotificationQueue implements ports.NotificationQueue on a single table.
// Outcome writes are conditional on (state = pending, attempts = observed), so two
// workers racing on the same intent cannot both record an outcome.
type GormNotificationQueue struct {
	db *gorm.DB
}

func NewGormNotificationQueue(db *gorm.DB) *GormNotificationQueue {
	return &GormNotificationQueue{db: db}
}

func (q *GormNotificationQueue) Enqueue(ctx context.Context, intent *notification.Intent) (kernel.UUID, error) {
	if err := intent.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	dto := fromDomain(intent)
	if err := q.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return kernel.UUID{}, err
	}
	return intent.ID(), nil
}

func (q *GormNotificationQueue) Get(ctx context.Context, id kernel.UUID) (*notification.Intent, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto IntentDTO
	if err := q.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("notification", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// FetchDue returns pending intents under the attempt cap, highest priority
// first and oldest first within a priority.
func (q *GormNotificationQueue) FetchDue(
	ctx context.Context,
	limit, maxAttempts int,
	now time.Time,
) ([]*notification.Intent, error) {
	var dtos []IntentDTO
	err := q.db.WithContext(ctx).
		Where("state = ? AND attempts < ? AND scheduled_at <= ?",
			notification.StatePending.String(), maxAttempts, now.UTC()).
		Order("priority DESC, created_at ASC, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	intents := make([]*notification.Intent, 0, len(dtos))
	for _, dto := range dtos {
		intent, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func (q *GormNotificationQueue) MarkSent(
	ctx context.Context,
	fetched *notification.Intent,
	msg notification.Message,
	at time.Time,
) error {
	return q.apply(ctx, fetched, func(i *notification.Intent) error {
		return i.MarkSent(msg, at)
	})
}

func (q *GormNotificationQueue) MarkFailedTerminal(
	ctx context.Context,
	fetched *notification.Intent,
	reason string,
	at time.Time,
) error {
	return q.apply(ctx, fetched, func(i *notification.Intent) error {
		return i.MarkFailedTerminal(reason, at)
	})
}

func (q *GormNotificationQueue) IncrementAttempt(
	ctx context.Context,
	fetched *notification.Intent,
	cause string,
	maxAttempts int,
	at time.Time,
) (notification.State, error) {
	err := q.apply(ctx, fetched, func(i *notification.Intent) error {
		return i.IncrementAttempt(cause, maxAttempts, at)
	})
	if err != nil {
		return notification.StateUnknown, err
	}
	return fetched.State(), nil
}

// PurgeSentBefore deletes sent intents whose sentAt is older than cutoff.
func (q *GormNotificationQueue) PurgeSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := q.db.WithContext(ctx).
		Where("state = ? AND sent_at < ?", notification.StateSent.String(), cutoff.UTC()).
		Delete(&IntentDTO{})
	return result.RowsAffected, result.Error
}

// apply runs transition on a copy of fetched and writes it back only if the row
// still holds the state fetched was read with. On success fetched reflects the write.
func (q *GormNotificationQueue) apply(
	ctx context.Context,
	fetched *notification.Intent,
	transition func(*notification.Intent) error,
) error {
	if err := fetched.Validate(); err != nil {
		return err
	}

	updated, err := notification.RestoreIntent(fetched.Snapshot())
	if err != nil {
		return err
	}
	if err = transition(updated); err != nil {
		return err
	}

	dto := fromDomain(updated)
	result := q.db.WithContext(ctx).
		Model(&IntentDTO{}).
		Where("id = ? AND state = ? AND attempts = ?",
			dto.ID, notification.StatePending.String(), fetched.Attempts()).
		Select(outcomeColumns).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err = q.db.WithContext(ctx).Model(&IntentDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("notification", fetched.ID().String())
		}
		return errs.NewConflictError("notification", fetched.ID().String())
	}

	*fetched = *updated
	return nil
}
