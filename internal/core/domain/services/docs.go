// Package services provides domain services for rules that need more context
// than a single value object holds.
//
// The package includes:
//   - TransitionValidator: decides whether an order may move to a requested status
//
// Services here are pure: they never persist, log or enqueue anything.
package services
