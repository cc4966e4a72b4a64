package http

import (
	"time"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/order"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type NewOrder struct {
	Number          string `json:"numero_pedido"`
	CustomerContact string `json:"customer_contact"`
}

type CreatedOrder struct {
	ID string `json:"id"`
}

type StatusChange struct {
	Status string `json:"status"`
	Note   string `json:"note"`
	Actor  string `json:"actor"`
}

type PaymentProof struct {
	Reference string `json:"payment_proof_ref"`
}

type PaymentValidation struct {
	Approved        bool   `json:"approved"`
	RejectionReason string `json:"rejection_reason"`
	ValidatedBy     string `json:"validated_by"`
}

type Order struct {
	ID                     string               `json:"id"`
	Number                 string               `json:"numero_pedido"`
	CustomerContact        string               `json:"customer_contact"`
	Status                 string               `json:"status"`
	PaymentStatus          string               `json:"payment_status"`
	Editable               bool                 `json:"editable"`
	PaymentProofRef        string               `json:"payment_proof_ref,omitempty"`
	PaymentRejectionReason string               `json:"payment_rejection_reason,omitempty"`
	PaymentValidatedBy     string               `json:"payment_validated_by,omitempty"`
	CancellationReason     string               `json:"cancellation_reason,omitempty"`
	Version                int                  `json:"version"`
	ReachedAt              map[string]time.Time `json:"reached_at"`
}

// LifecycleResponse is returned by the operations that may queue a notification.
type LifecycleResponse struct {
	Order              Order `json:"order"`
	NotificationQueued bool  `json:"notification_queued"`
}

type ActiveOrder struct {
	ID             string `json:"id"`
	Number         string `json:"numero_pedido"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
	AwaitingReview bool   `json:"awaiting_review"`
}

type HistoryEntry struct {
	ID           string         `json:"id"`
	StatusBefore string         `json:"status_before"`
	StatusAfter  string         `json:"status_after"`
	ActorRole    string         `json:"actor_role"`
	ActorName    string         `json:"actor_name"`
	Note         string         `json:"note,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type DrainSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

func orderFromAggregate(o *order.Order) Order {
	reached := make(map[string]time.Time)
	for _, s := range order.AllStatuses() {
		if at, ok := o.ReachedAt(s); ok {
			reached[s.String()] = at
		}
	}

	return Order{
		ID:                     o.ID().String(),
		Number:                 o.Number(),
		CustomerContact:        o.CustomerContact(),
		Status:                 o.Status().String(),
		PaymentStatus:          o.PaymentStatus().String(),
		Editable:               o.IsEditable(),
		PaymentProofRef:        o.PaymentProofRef(),
		PaymentRejectionReason: o.PaymentRejectionReason(),
		PaymentValidatedBy:     o.PaymentValidatedBy(),
		CancellationReason:     o.CancellationReason(),
		Version:                o.Version(),
		ReachedAt:              reached,
	}
}

func orderFromQuery(r queries.GetOrderQueryResponse) Order {
	reached := make(map[string]time.Time, len(r.ReachedAt))
	for s, at := range r.ReachedAt {
		reached[s.String()] = at
	}

	return Order{
		ID:                     r.ID.String(),
		Number:                 r.Number,
		CustomerContact:        r.CustomerContact,
		Status:                 r.Status.String(),
		PaymentStatus:          r.PaymentStatus.String(),
		Editable:               r.Editable,
		PaymentProofRef:        r.PaymentProofRef,
		PaymentRejectionReason: r.PaymentRejectionReason,
		PaymentValidatedBy:     r.PaymentValidatedBy,
		CancellationReason:     r.CancellationReason,
		Version:                r.Version,
		ReachedAt:              reached,
	}
}

func lifecycleResponse(r commands.LifecycleResult) LifecycleResponse {
	return LifecycleResponse{
		Order:              orderFromAggregate(r.Order),
		NotificationQueued: r.NotificationQueued,
	}
}
