package metrics

import (
	"errors"

	"github.com/kilianp07/pvrouter/core/events"
	coremetrics "github.com/kilianp07/pvrouter/core/metrics"
	"github.com/kilianp07/pvrouter/core/model"
)

// MultiSink fans records out to several sinks, collecting errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) each(f func(coremetrics.Sink) error) error {
	var errs []error
	for _, s := range m.sinks {
		if err := f(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordPeriod(res model.PeriodResult, smoothed int64) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordPeriod(res, smoothed) })
}

func (m *MultiSink) RecordLoadStates(mask model.Bitmask, loads []model.LoadSpec) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordLoadStates(mask, loads) })
}

func (m *MultiSink) RecordTransition(ev events.TransitionEvent) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordTransition(ev) })
}

func (m *MultiSink) RecordLinkStatus(up bool) error {
	return m.each(func(s coremetrics.Sink) error { return s.RecordLinkStatus(up) })
}

var _ coremetrics.Sink = (*MultiSink)(nil)
