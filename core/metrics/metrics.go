// Package metrics defines the sink contract for router observability.
// Implementations live under infra/metrics.
package metrics

import (
	"github.com/kilianp07/pvrouter/core/events"
	"github.com/kilianp07/pvrouter/core/model"
)

// Sink records router telemetry. Implementations must tolerate being called
// from the control loop and never block it for long.
type Sink interface {
	// RecordPeriod records one measurement period and the smoothed power.
	RecordPeriod(res model.PeriodResult, smoothed int64) error
	// RecordLoadStates records the current output mask.
	RecordLoadStates(mask model.Bitmask, loads []model.LoadSpec) error
	// RecordTransition records one load switching event.
	RecordTransition(ev events.TransitionEvent) error
	// RecordLinkStatus records the remote link state.
	RecordLinkStatus(up bool) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordPeriod(model.PeriodResult, int64) error           { return nil }
func (NopSink) RecordLoadStates(model.Bitmask, []model.LoadSpec) error { return nil }
func (NopSink) RecordTransition(events.TransitionEvent) error          { return nil }
func (NopSink) RecordLinkStatus(bool) error                            { return nil }
