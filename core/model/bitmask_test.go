package model

import "testing"

func TestBitmaskSetClear(t *testing.T) {
	var m Bitmask
	m.Set(0)
	m.Set(3)
	if !m.IsSet(0) || !m.IsSet(3) || m.IsSet(1) {
		t.Fatalf("unexpected mask %#b", m)
	}
	m.Clear(3)
	if m.IsSet(3) || !m.IsSet(0) {
		t.Fatalf("clear misbehaved: %#b", m)
	}
}

func TestBitmaskSplit(t *testing.T) {
	tests := []struct {
		name  string
		mask  Bitmask
		local int
		wantL uint16
		wantR uint8
	}{
		{"all local", 0b1011, 4, 0b1011, 0},
		{"all remote", 0b0101, 0, 0, 0b0101},
		{"mixed", 0b110101, 4, 0b0101, 0b11},
		{"empty", 0, 3, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			local, remote := tc.mask.Split(tc.local)
			if local != tc.wantL || remote != tc.wantR {
				t.Fatalf("Split(%d) on %#b: got (%#b, %#b) want (%#b, %#b)",
					tc.local, tc.mask, local, remote, tc.wantL, tc.wantR)
			}
		})
	}
}

func TestPeriodResultRMSVoltage(t *testing.T) {
	res := PeriodResult{SumVSquared: 400 * 100, Samples: 100}
	if got := res.RMSVoltage(); got != 20 {
		t.Fatalf("RMSVoltage: got %v want 20", got)
	}
	var empty PeriodResult
	if got := empty.RMSVoltage(); got != 0 {
		t.Fatalf("RMSVoltage on empty result: got %v want 0", got)
	}
}
