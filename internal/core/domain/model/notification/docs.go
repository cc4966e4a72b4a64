// Package notification models the customer notification queue: intents, their
// event type and priority, and the Pending/Sent/Failed processing states.
//
// Every outcome of a processing attempt counts as an attempt. A transient
// failure keeps the intent Pending until MaxAttempts is reached, after which
// it is Failed and never picked up again.
package notification
