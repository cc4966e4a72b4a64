// Package errs provides the typed errors shared by the storefront service.
//
// Validation failures (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError)
// and ObjectNotFoundError are surfaced to callers as-is. ConflictError reports a
// conditional write that lost a race. TransientError and TerminalError classify
// notification processing failures: transient ones consume a retry attempt, terminal
// ones fail the intent immediately.
//
// Each type follows the same shape: a sentinel variable, a struct with the details,
// New... constructors with and without a cause, Error() and Unwrap().
package errs
