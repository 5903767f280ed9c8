// Package notifications delivers run and release events to a Discord webhook.
//
// The service is fire-and-forget from the caller's perspective: delivery
// failures are returned for logging but never abort a run. When no webhook is
// configured a noop implementation is returned so callers never nil-check.
package notifications
