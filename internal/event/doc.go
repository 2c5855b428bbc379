// Package event defines the wire envelope and payload shapes exchanged
// between clients and the relay.
//
// Payload views parse only the fields the relay reads; raw payload bytes
// are kept around so fan-out forwards records unchanged.
package event
