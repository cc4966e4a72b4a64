package commands

import (
	"errors"

	"storefront/internal/pkg/guard"
)

var ErrDrainNotificationQueueCommandIsNotConstructed = errors.New(
	"DrainNotificationQueueCommand must be created via NewDrainNotificationQueueCommand constructor",
)

// DrainNotificationQueueCommand runs one dispatch pass over the due intents.
type DrainNotificationQueueCommand struct {
	guard guard.ConstructorGuard
}

func NewDrainNotificationQueueCommand() DrainNotificationQueueCommand {
	return DrainNotificationQueueCommand{guard: guard.NewConstructorGuard()}
}

func (c DrainNotificationQueueCommand) Validate() error {
	return c.guard.Validate(ErrDrainNotificationQueueCommandIsNotConstructed)
}
