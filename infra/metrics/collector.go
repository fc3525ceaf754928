package metrics

import (
	"context"

	"github.com/kilianp07/pvrouter/core/events"
	coremetrics "github.com/kilianp07/pvrouter/core/metrics"
	"github.com/kilianp07/pvrouter/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.PeriodEvent:
					_ = sink.RecordPeriod(e.Result, e.Smoothed)
				case events.TransitionEvent:
					_ = sink.RecordTransition(e)
				case events.LinkEvent:
					_ = sink.RecordLinkStatus(e.Up)
				}
			}
		}
	}()
}
