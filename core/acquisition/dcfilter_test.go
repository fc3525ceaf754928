package acquisition

import (
	"math"
	"math/rand"
	"testing"
)

// leftAlign converts a right-aligned 10-bit reading to the front-end format.
func leftAlign(adc uint16) uint16 { return adc << ADCShift }

func TestDCFilterInitialValues(t *testing.T) {
	f := NewDCFilter()
	if f.Offset() != 32704 {
		t.Fatalf("nominal offset: got %d want 32704", f.Offset())
	}
	if f.Accumulator() != uint32(32704)<<15 {
		t.Fatalf("accumulator: got %d want %d", f.Accumulator(), uint32(32704)<<15)
	}
	if f.Offset() != uint16(f.Accumulator()>>15) {
		t.Fatalf("offset/accumulator relationship broken at init")
	}
}

func TestDCFilterRounding(t *testing.T) {
	f := NewDCFilter()
	// Mid-point sample: (32768|32) - 32704 = 96.
	if d := f.Deviation(leftAlign(512)); d != 96 {
		t.Fatalf("deviation(512): got %d want 96", d)
	}
	// Sample equal to the offset still carries the rounding bit.
	if d := f.Deviation(leftAlign(511)); d != 32 {
		t.Fatalf("deviation(511): got %d want 32", d)
	}
	if d := f.Deviation(leftAlign(400)); d != -7072 {
		t.Fatalf("deviation(400): got %d want -7072", d)
	}
}

// The cached offset must equal the accumulator's high bits immediately after
// every refresh, whatever the sample sequence was.
func TestDCFilterOffsetInvariant(t *testing.T) {
	f := NewDCFilter()
	rng := rand.New(rand.NewSource(1))
	for cycle := 0; cycle < 200; cycle++ {
		for s := 0; s < 80; s++ {
			f.ProcessSample(leftAlign(uint16(rng.Intn(1024))))
		}
		f.Refresh()
		if f.Offset() != uint16(f.Accumulator()>>15) {
			t.Fatalf("cycle %d: offset %d != accumulator>>15 %d",
				cycle, f.Offset(), uint16(f.Accumulator()>>15))
		}
	}
}

func TestDCFilterTracksShiftedDC(t *testing.T) {
	cases := []struct {
		name   string
		trueDC uint16
	}{
		{"upward", 520},
		{"downward", 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewDCFilter()
			for cycle := 0; cycle < 500; cycle++ {
				for s := 0; s < 80; s++ {
					f.ProcessSample(leftAlign(tc.trueDC))
				}
				f.Refresh()
			}
			want := int(tc.trueDC) << ADCShift
			got := int(f.Offset())
			if got < want-500 || got > want+500 {
				t.Fatalf("offset after convergence: got %d want %d±500", got, want)
			}
		})
	}
}

func TestDCFilterStableOnCenteredWaveform(t *testing.T) {
	f := NewDCFilter()
	for cycle := 0; cycle < 100; cycle++ {
		for s := 0; s < 160; s++ {
			angle := 2 * math.Pi * float64(s) / 160
			adc := 512 + int(400*math.Sin(angle))
			f.ProcessSample(leftAlign(uint16(adc)))
			if s == 79 || s == 159 {
				f.Refresh()
			}
		}
	}
	got := int(f.Offset())
	if got < 32768-500 || got > 32768+500 {
		t.Fatalf("offset drifted off a centered waveform: %d", got)
	}
}

// With the input stuck at the positive rail the signed difference wraps; the
// offset then tracks downward. Deterministic, documented, not detected.
func TestDCFilterStuckAtRail(t *testing.T) {
	f := NewDCFilter()
	if d := f.Deviation(leftAlign(1023)); d != -32736 {
		t.Fatalf("rail deviation: got %d want -32736 (wrapped)", d)
	}
	before := f.Offset()
	for cycle := 0; cycle < 50; cycle++ {
		for s := 0; s < 80; s++ {
			f.ProcessSample(leftAlign(1023))
		}
		f.Refresh()
	}
	if f.Offset() >= before {
		t.Fatalf("offset should track downward under the wrap: before %d after %d", before, f.Offset())
	}
}

func TestDCFilterStuckAtZero(t *testing.T) {
	f := NewDCFilter()
	before := f.Offset()
	for cycle := 0; cycle < 50; cycle++ {
		for s := 0; s < 80; s++ {
			f.ProcessSample(leftAlign(0))
		}
		f.Refresh()
	}
	if f.Offset() >= before {
		t.Fatalf("offset should decrease toward a grounded input: before %d after %d", before, f.Offset())
	}
	if f.Offset() == 0 {
		t.Fatalf("offset should not collapse to zero after 50 cycles")
	}
}
