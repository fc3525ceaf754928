package metrics

import (
	"errors"
	"testing"

	"github.com/kilianp07/pvrouter/core/events"
	"github.com/kilianp07/pvrouter/core/model"
)

type recordSink struct {
	count int
	fail  error
}

func (r *recordSink) RecordPeriod(model.PeriodResult, int64) error {
	r.count++
	return r.fail
}

func (r *recordSink) RecordLoadStates(model.Bitmask, []model.LoadSpec) error {
	r.count++
	return r.fail
}

func (r *recordSink) RecordTransition(events.TransitionEvent) error {
	r.count++
	return r.fail
}

func (r *recordSink) RecordLinkStatus(bool) error {
	r.count++
	return r.fail
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPeriod(model.PeriodResult{}, 0); err != nil {
		t.Fatalf("record period: %v", err)
	}
	if err := m.RecordTransition(events.TransitionEvent{}); err != nil {
		t.Fatalf("record transition: %v", err)
	}
	if err := m.RecordLinkStatus(true); err != nil {
		t.Fatalf("record link: %v", err)
	}
	if s1.count != 3 || s2.count != 3 {
		t.Fatalf("records not forwarded: %d %d", s1.count, s2.count)
	}
}

func TestMultiSinkCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{fail: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordLinkStatus(false); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if s2.count != 1 {
		t.Fatal("error in one sink must not skip the others")
	}
}
