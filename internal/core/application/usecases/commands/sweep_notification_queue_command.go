package commands

import (
	"errors"
	"time"

	"storefront/internal/core/domain/model/notification"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/guard"
)

var ErrSweepNotificationQueueCommandIsNotConstructed = errors.New(
	"SweepNotificationQueueCommand must be created via NewSweepNotificationQueueCommand constructor",
)

// SweepNotificationQueueCommand purges sent intents older than the retention horizon.
type SweepNotificationQueueCommand struct {
	retention time.Duration

	guard guard.ConstructorGuard
}

// NewSweepNotificationQueueCommand uses notification.DefaultRetention when retention is zero.
func NewSweepNotificationQueueCommand(retention time.Duration) (SweepNotificationQueueCommand, error) {
	if retention == 0 {
		retention = notification.DefaultRetention
	}
	if retention < 0 {
		return SweepNotificationQueueCommand{}, errs.NewValueIsOutOfRangeError("retention", retention, 0, "unbounded")
	}

	return SweepNotificationQueueCommand{
		retention: retention,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SweepNotificationQueueCommand) Validate() error {
	return c.guard.Validate(ErrSweepNotificationQueueCommandIsNotConstructed)
}

func (c SweepNotificationQueueCommand) Retention() time.Duration {
	return c.retention
}
