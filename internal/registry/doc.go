// Package registry owns live connection state: which connections exist and
// which rooms each has joined. Rooms are flat string keys; a user's personal
// room and a chat's group room live in one namespace.
//
// Delivery is best effort. The registry fans an event out to a room's
// current members and never tracks whether a frame arrived.
package registry
