// Package metrics holds the Prometheus collectors of the storefront service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_transitions_total",
			Help: "Accepted order status transitions",
		},
		[]string{"from", "to"},
	)

	OrderTransitionsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_order_transitions_rejected_total",
			Help: "Status changes rejected by the transition rules",
		},
	)

	NotificationsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notifications_enqueued_total",
			Help: "Notification intents handed to the queue, by type and result",
		},
		[]string{"type", "result"},
	)

	NotificationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notification_outcomes_total",
			Help: "Per-intent dispatch outcomes: sent, terminal, transient, skipped",
		},
		[]string{"outcome"},
	)

	NotificationDeliveryFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_notification_delivery_failures_total",
			Help: "Delivery failures after an intent was already marked sent",
		},
	)

	DrainDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_notification_drain_duration_seconds",
			Help:    "Duration of one notification drain pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotificationsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_notifications_purged_total",
			Help: "Sent intents removed by the queue janitor",
		},
	)
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(
		OrderTransitionsTotal,
		OrderTransitionsRejectedTotal,
		NotificationsEnqueuedTotal,
		NotificationOutcomesTotal,
		NotificationDeliveryFailuresTotal,
		DrainDuration,
		NotificationsPurgedTotal,
	)
}
