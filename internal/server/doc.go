// Package server is the WebSocket transport: it upgrades HTTP requests,
// runs one read pump and one write pump per session, and feeds inbound
// frames to the event router. A session's frames are dispatched in order;
// sessions run concurrently with each other.
package server
