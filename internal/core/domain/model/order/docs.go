// Package order holds the Order aggregate of the storefront and its audit trail.
//
// The package includes:
//   - Order: identity, lifecycle status, payment review state and lifecycle timestamps
//   - Status and PaymentStatus: the enums with their stable wire values
//   - HistoryEntry: the append-only audit record written on every change
//
// Whether a transition is legal is decided by services.TransitionValidator; the
// aggregate applies the side effects (timestamps, editability, cancellation and
// payment fields) once a transition has been accepted.
package order
