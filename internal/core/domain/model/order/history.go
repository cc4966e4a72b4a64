package order

import (
	"errors"
	"maps"
	"strings"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"
)

// DefaultActorName is recorded when a caller does not identify itself.
const DefaultActorName = "Admin"

// ActorRole identifies who triggered a lifecycle change.
type ActorRole string

const (
	ActorSeller   ActorRole = "seller"
	ActorCustomer ActorRole = "customer"
	ActorSystem   ActorRole = "system"
)

func (r ActorRole) Validate() error {
	switch r {
	case ActorSeller, ActorCustomer, ActorSystem:
		return nil
	default:
		return errs.NewValueIsInvalidError("actor role")
	}
}

// Actor is the role and display name recorded in the audit trail.
type Actor struct {
	Role ActorRole
	Name string
}

// NewSellerActor builds the seller actor used by the back-office endpoints.
func NewSellerActor(name string) Actor {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultActorName
	}
	return Actor{Role: ActorSeller, Name: name}
}

// HistoryEntry is an immutable audit record of one lifecycle change.
type HistoryEntry struct {
	id           kernel.UUID
	orderID      kernel.UUID
	statusBefore Status
	statusAfter  Status
	actor        Actor
	note         string
	metadata     map[string]any
	createdAt    time.Time
}

// NewHistoryEntry records a change of orderID from before to after.
func NewHistoryEntry(
	orderID kernel.UUID,
	before, after Status,
	actor Actor,
	note string,
	metadata map[string]any,
	at time.Time,
) (*HistoryEntry, error) {
	return RestoreHistoryEntry(kernel.NewUUID(), orderID, before, after, actor, note, metadata, at)
}

// RestoreHistoryEntry rebuilds a persisted entry.
func RestoreHistoryEntry(
	id, orderID kernel.UUID,
	before, after Status,
	actor Actor,
	note string,
	metadata map[string]any,
	at time.Time,
) (*HistoryEntry, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		before.Validate(),
		after.Validate(),
		actor.Role.Validate(),
	); err != nil {
		return nil, err
	}

	return &HistoryEntry{
		id:           id,
		orderID:      orderID,
		statusBefore: before,
		statusAfter:  after,
		actor:        actor,
		note:         note,
		metadata:     maps.Clone(metadata),
		createdAt:    at,
	}, nil
}

func (h *HistoryEntry) ID() kernel.UUID      { return h.id }
func (h *HistoryEntry) OrderID() kernel.UUID { return h.orderID }
func (h *HistoryEntry) StatusBefore() Status { return h.statusBefore }
func (h *HistoryEntry) StatusAfter() Status  { return h.statusAfter }
func (h *HistoryEntry) Actor() Actor         { return h.actor }
func (h *HistoryEntry) Note() string         { return h.note }
func (h *HistoryEntry) CreatedAt() time.Time { return h.createdAt }

// Metadata returns a copy of the structured metadata.
func (h *HistoryEntry) Metadata() map[string]any {
	return maps.Clone(h.metadata)
}
