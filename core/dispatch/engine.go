// Package dispatch implements the load dispatch engine: given the smoothed
// supply-point power, decide once per tick which loads to energize, subject
// to per-load hysteresis thresholds, dwell timers and one shared settle
// window. Scanning ascends the priority ladder on surplus and descends it on
// import, so the lowest-priority load gets surplus first and is shed last,
// and at most one load changes state per tick.
package dispatch

import (
	"fmt"

	"github.com/kilianp07/pvrouter/core/events"
	"github.com/kilianp07/pvrouter/core/logger"
	"github.com/kilianp07/pvrouter/core/model"
	"github.com/kilianp07/pvrouter/internal/eventbus"
)

// loadState is the runtime state of one load. ticksInState saturates at its
// maximum so a load parked forever in one state stays eligible to change.
type loadState struct {
	on           bool
	ticksInState uint32
}

const maxTicksInState = ^uint32(0)

// Engine is the dispatch state machine. It is owned by the control loop and
// is not safe for concurrent use; every decision is a pure state transition
// driven by counters and thresholds, with no error paths.
type Engine struct {
	loads  []model.LoadSpec
	states []loadState
	settle uint32

	settleTicks uint32
	avg         *EWMA

	log logger.Logger
	bus eventbus.EventBus
}

// NewEngine creates an engine with all loads off and the settle counter
// primed with the startup quiet period, so nothing can change at boot.
func NewEngine(cfg Config, log logger.Logger, bus eventbus.EventBus) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch config: %w", err)
	}
	return &Engine{
		loads:       cfg.Loads,
		states:      make([]loadState, len(cfg.Loads)),
		settle:      cfg.StartupTicks,
		settleTicks: cfg.SettleTicks,
		avg:         NewEWMA(cfg.EWMADivisor),
		log:         log,
		bus:         bus,
	}, nil
}

// UpdateAverage folds a period power result into the cloud-immunity averager
// and returns the smoothed value fed to Tick.
func (e *Engine) UpdateAverage(power int64) int64 { return e.avg.Update(power) }

// Smoothed returns the current smoothed power.
func (e *Engine) Smoothed() int64 { return e.avg.Value() }

// Mask returns the current output bitmask, one bit per load.
func (e *Engine) Mask() model.Bitmask {
	var m model.Bitmask
	for i, st := range e.states {
		if st.on {
			m.Set(i)
		}
	}
	return m
}

// Tick evaluates the loads once against the smoothed power p. ovr carries
// externally requested forced-on bits; bits the engine evaluates this tick
// are cleared, bits left unreached (for example while the settle gate holds)
// stay set for the next tick. At most one load changes state; the shared
// settle counter is reset to full after a successful transition.
//
// An override bypasses the threshold comparison only, never the dwell timers
// or the settle gate.
func (e *Engine) Tick(p int64, ovr *model.Bitmask) model.Bitmask {
	// Age every duration counter, compare-before-increment so they saturate
	// instead of wrapping.
	for i := range e.states {
		if e.states[i].ticksInState != maxTicksInState {
			e.states[i].ticksInState++
		}
	}
	if e.settle > 0 {
		e.settle--
	}
	if e.settle > 0 {
		return e.Mask()
	}

	if p <= 0 {
		e.scanSurplus(p, ovr)
	} else {
		e.scanImport(p)
	}
	return e.Mask()
}

// scanSurplus walks the ladder bottom-up and turns on the first eligible
// load. A forced bit on an already-on load is consumed without stopping the
// scan, since no state changed.
func (e *Engine) scanSurplus(p int64, ovr *model.Bitmask) {
	for i := range e.loads {
		forced := ovr != nil && ovr.IsSet(i)
		if forced {
			ovr.Clear(i)
		}
		if !forced && p >= -e.loads[i].SurplusThreshold {
			continue
		}
		st := &e.states[i]
		if st.on {
			continue
		}
		if st.ticksInState < e.loads[i].MinOffTicks {
			continue
		}
		st.on = true
		st.ticksInState = 0
		e.settle = e.settleTicks
		e.announce(i, true, p, forced)
		return
	}
}

// scanImport walks the ladder top-down and sheds the first load whose import
// threshold is exceeded and whose minimum-on dwell has elapsed.
func (e *Engine) scanImport(p int64) {
	for i := len(e.loads) - 1; i >= 0; i-- {
		st := &e.states[i]
		if !st.on {
			continue
		}
		if p <= e.loads[i].ImportThreshold {
			continue
		}
		if st.ticksInState < e.loads[i].MinOnTicks {
			continue
		}
		st.on = false
		st.ticksInState = 0
		e.settle = e.settleTicks
		e.announce(i, false, p, false)
		return
	}
}

func (e *Engine) announce(i int, on bool, p int64, forced bool) {
	if e.log != nil {
		state := "off"
		if on {
			state = "on"
		}
		e.log.Infof("load %s -> %s (power=%d forced=%t)", e.loads[i].Name, state, p, forced)
	}
	if e.bus != nil {
		e.bus.Publish(events.TransitionEvent{Load: i, Name: e.loads[i].Name, On: on})
	}
}
