// Package delivery hands rendered notifications to a delivery channel.
package delivery

import (
	"context"
	"log/slog"

	"storefront/internal/core/domain/model/notification"
)

// LogDelivery writes every rendered message to the log. The seller opens the
// WhatsApp link from there, so it is the default channel.
type LogDelivery struct {
	logger *slog.Logger
}

func NewLogDelivery(logger *slog.Logger) *LogDelivery {
	return &LogDelivery{logger: logger.With("component", "log_delivery")}
}

func (d *LogDelivery) Deliver(ctx context.Context, intent *notification.Intent, msg notification.Message) error {
	d.logger.InfoContext(ctx, "notification ready",
		"intent_id", intent.ID().String(),
		"order_id", intent.OrderID().String(),
		"type", intent.Type().String(),
		"url", msg.DeliveryURL,
	)
	return nil
}
