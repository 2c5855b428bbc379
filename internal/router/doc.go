// Package router classifies inbound client frames and dispatches them to
// the connection registry and the typing coordinator.
//
// Error handling is deliberately best effort: malformed frames are dropped
// with a log line and nothing is surfaced back to the client. The relay is
// a notification layer, not a guaranteed-delivery channel.
package router
