// internal/protocol/transport.go
package protocol

// Package protocol carries the wired management path to SmartVNS
// devices: a line-oriented command console reached over the device's
// USB serial port. Framing below the console line level belongs to the
// transport implementation.

import "context"

// Transport is a line-oriented request/response channel to a device
// management console.
type Transport interface {
	// Open establishes the channel.
	Open(ctx context.Context) error
	// Close releases the channel.
	Close() error
	// IsOpen reports whether the channel is usable.
	IsOpen() bool
	// Request sends one command line and returns the device's reply
	// line.
	Request(ctx context.Context, line string) (string, error)
}
