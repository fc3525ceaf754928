package receiver

import (
	"testing"
	"time"
)

// recordingWriter captures every port write in order.
type recordingWriter struct {
	writes []uint16
}

func (w *recordingWriter) Write(mask uint16) error {
	w.writes = append(w.writes, mask)
	return nil
}

func TestReceiverBootsSafe(t *testing.T) {
	out := &recordingWriter{}
	r, err := New(Config{}, out, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Status() != LinkLost {
		t.Fatalf("boot status: got %v want lost", r.Status())
	}
	if len(out.writes) != 1 || out.writes[0] != 0 {
		t.Fatalf("boot must force outputs off, writes %v", out.writes)
	}
}

func TestReceiverFailsafeTimeout(t *testing.T) {
	out := &recordingWriter{}
	r, err := New(Config{TimeoutMS: 500}, out, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t0 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	r.OnMessageAt(0b01, t0)
	if r.Status() != LinkOK || r.Mask() != 0b01 {
		t.Fatalf("after message: status %v mask %#b", r.Status(), r.Mask())
	}

	// Inside the window nothing happens.
	r.Poll(t0.Add(400 * time.Millisecond))
	if r.Status() != LinkOK || r.Mask() != 0b01 {
		t.Fatalf("poll inside window: status %v mask %#b", r.Status(), r.Mask())
	}

	// Silence past the timeout forces everything off.
	r.Poll(t0.Add(501 * time.Millisecond))
	if r.Status() != LinkLost {
		t.Fatalf("poll past timeout: status %v want lost", r.Status())
	}
	if r.Mask() != 0 {
		t.Fatalf("mask after failsafe: got %#b want 0", r.Mask())
	}
	if want := []uint16{0, 1, 0}; len(out.writes) != len(want) {
		t.Fatalf("writes: got %v want %v", out.writes, want)
	} else {
		for i := range want {
			if out.writes[i] != want[i] {
				t.Fatalf("writes: got %v want %v", out.writes, want)
			}
		}
	}
}

func TestReceiverRecoversAfterLinkLoss(t *testing.T) {
	out := &recordingWriter{}
	r, err := New(Config{TimeoutMS: 500}, out, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t0 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	r.OnMessageAt(0b11, t0)
	r.Poll(t0.Add(time.Second))
	if r.Status() != LinkLost {
		t.Fatal("setup: link should be lost")
	}

	// The next message restores the link and applies its mask directly.
	r.OnMessageAt(0b10, t0.Add(2*time.Second))
	if r.Status() != LinkOK || r.Mask() != 0b10 {
		t.Fatalf("after recovery: status %v mask %#b", r.Status(), r.Mask())
	}
	r.Poll(t0.Add(2*time.Second + 400*time.Millisecond))
	if r.Status() != LinkOK {
		t.Fatal("link dropped again inside the window")
	}
}

func TestReceiverPollWhileLostIsIdle(t *testing.T) {
	out := &recordingWriter{}
	r, err := New(Config{}, out, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Poll(time.Now())
	r.Poll(time.Now().Add(time.Hour))
	if len(out.writes) != 1 {
		t.Fatalf("lost link must not rewrite outputs, writes %v", out.writes)
	}
}

func TestReceiverConfigValidation(t *testing.T) {
	if _, err := New(Config{TimeoutMS: -1}, nil, nil, nil); err == nil {
		t.Fatal("expected error for negative timeout")
	}
	if _, err := New(Config{Loads: 9}, nil, nil, nil); err == nil {
		t.Fatal("expected error for more than 8 loads")
	}
}
