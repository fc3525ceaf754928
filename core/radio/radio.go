// Package radio defines the contract with the remote-load transport. The
// router sends one byte per dispatch tick, fire-and-forget; framing,
// encryption and reconnection live in the transport implementation.
package radio

import "errors"

// ErrNotConnected is returned when the transport has no usable link.
var ErrNotConnected = errors.New("radio: not connected")

// Sender transmits the remote-load byte, bit n = remote load n energized.
// There is no application-level acknowledgment: the receiver enforces its
// own failsafe when messages stop arriving.
type Sender interface {
	SendLoadStates(mask uint8) error
	Close() error
}

// NopSender discards all sends, for routers without remote loads.
type NopSender struct{}

func (NopSender) SendLoadStates(uint8) error { return nil }
func (NopSender) Close() error               { return nil }
