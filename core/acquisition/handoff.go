package acquisition

import (
	"sync/atomic"

	"github.com/kilianp07/pvrouter/core/model"
)

// PeriodHandoff passes period snapshots from the sampling goroutine to the
// control loop without locks. The discipline is single producer, single
// consumer: the producer writes the full snapshot and sets the ready flag as
// its last action; the consumer checks the flag first and only then reads.
// The atomic store/load pair provides the write-then-publish ordering.
type PeriodHandoff struct {
	snapshot model.PeriodResult
	ready    atomic.Bool
}

// Publish hands a snapshot to the consumer. If the previous snapshot has not
// been consumed yet the new one is dropped and false is returned; the
// producer never blocks.
func (h *PeriodHandoff) Publish(r model.PeriodResult) bool {
	if h.ready.Load() {
		return false
	}
	h.snapshot = r
	h.ready.Store(true)
	return true
}

// Poll returns the pending snapshot, if any, and clears the ready flag.
func (h *PeriodHandoff) Poll() (model.PeriodResult, bool) {
	if !h.ready.Load() {
		return model.PeriodResult{}, false
	}
	r := h.snapshot
	h.ready.Store(false)
	return r, true
}
