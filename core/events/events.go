// Package events defines the event types published on the internal bus.
package events

import "github.com/kilianp07/pvrouter/core/model"

// PeriodEvent is published when a measurement period completes.
type PeriodEvent struct {
	Result   model.PeriodResult
	Smoothed int64
}

// TransitionEvent is published when the dispatch engine switches a load.
type TransitionEvent struct {
	Load int
	Name string
	On   bool
}

// LinkEvent is published when the remote radio link changes state.
type LinkEvent struct {
	Up bool
}
