// Package receiver implements the remote-load receiver state machine. The
// receiver applies whatever bitmask the router last sent, but if no message
// arrives within the link timeout it forces every output off and only acts
// on bitmasks again once the link is confirmed alive. Safety over
// availability: the failsafe is a hard-coded safe state, not a retry.
package receiver

import (
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/pvrouter/core/events"
	"github.com/kilianp07/pvrouter/core/logger"
	"github.com/kilianp07/pvrouter/core/ports"
	"github.com/kilianp07/pvrouter/internal/eventbus"
)

// LinkStatus describes the radio link state.
type LinkStatus uint8

const (
	// LinkLost means no recent message; outputs are forced off.
	LinkLost LinkStatus = iota
	// LinkOK means the link is alive and bitmasks are acted on.
	LinkOK
)

func (s LinkStatus) String() string {
	if s == LinkOK {
		return "ok"
	}
	return "lost"
}

// Config defines the receiver settings.
type Config struct {
	// TimeoutMS declares the link lost after this many milliseconds of
	// silence.
	TimeoutMS int `json:"timeout_ms"`
	// Loads is the number of outputs driven by this unit.
	Loads int `json:"loads"`
}

// SetDefaults applies the nominal 500 ms failsafe window.
func (c *Config) SetDefaults() {
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 500
	}
	if c.Loads == 0 {
		c.Loads = 2
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	if c.Loads < 1 || c.Loads > 8 {
		return fmt.Errorf("loads must be between 1 and 8")
	}
	return nil
}

// Receiver tracks the link and drives the local outputs. Messages arrive on
// the transport's goroutine while Poll runs on the main loop, so state is
// mutex-protected.
type Receiver struct {
	mu      sync.Mutex
	status  LinkStatus
	mask    uint8
	lastMsg time.Time

	timeout time.Duration
	out     ports.PortWriter
	log     logger.Logger
	bus     eventbus.EventBus
}

// New creates a receiver. It boots with the link considered lost and all
// outputs off.
func New(cfg Config, out ports.PortWriter, log logger.Logger, bus eventbus.EventBus) (*Receiver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("receiver config: %w", err)
	}
	r := &Receiver{
		status:  LinkLost,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		out:     out,
		log:     log,
		bus:     bus,
	}
	if r.out == nil {
		r.out = ports.NopWriter{}
	}
	_ = r.out.Write(0)
	return r, nil
}

// OnMessage applies a freshly received bitmask and marks the link alive.
func (r *Receiver) OnMessage(mask uint8) { r.OnMessageAt(mask, time.Now()) }

// OnMessageAt is OnMessage with an explicit receive time.
func (r *Receiver) OnMessageAt(mask uint8, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mask = mask
	r.lastMsg = now
	if err := r.out.Write(uint16(mask)); err != nil && r.log != nil {
		r.log.Errorf("port write: %v", err)
	}
	if r.status != LinkOK {
		r.status = LinkOK
		if r.log != nil {
			r.log.Infof("radio link restored")
		}
		if r.bus != nil {
			r.bus.Publish(events.LinkEvent{Up: true})
		}
	}
}

// Poll checks the failsafe timer. Call it from the main loop at a cadence
// well below the timeout.
func (r *Receiver) Poll(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != LinkOK {
		return
	}
	if now.Sub(r.lastMsg) <= r.timeout {
		return
	}
	r.status = LinkLost
	r.mask = 0
	if err := r.out.Write(0); err != nil && r.log != nil {
		r.log.Errorf("port write: %v", err)
	}
	if r.log != nil {
		r.log.Warnf("radio link lost, all loads forced off")
	}
	if r.bus != nil {
		r.bus.Publish(events.LinkEvent{Up: false})
	}
}

// Status returns the current link state.
func (r *Receiver) Status() LinkStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Mask returns the bitmask currently applied to the outputs.
func (r *Receiver) Mask() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mask
}
