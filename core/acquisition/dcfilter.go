// Package acquisition implements the per-sample measurement pipeline: DC
// offset tracking of the sampled AC waveform and accumulation of real power
// and squared voltage over a measurement period. All arithmetic is integer
// fixed-point, mirroring the constraints of an ADC front end that delivers
// 10-bit readings left-aligned into 16 bits.
package acquisition

// Fixed-point layout of the sampling front end.
const (
	// ADCShift left-aligns a 10-bit reading into 16 bits.
	ADCShift = 6
	// NominalOffset is the boot value of the DC offset, one count below the
	// ADC mid-point: 511 << 6.
	NominalOffset uint16 = 511 << ADCShift
	// filterShift sets the drift integrator time constant. The cached offset
	// is the accumulator's high bits; with ~160 samples per mains cycle the
	// filter settles over several hundred cycles, which is deliberate.
	filterShift = 15
	// roundingBit forces a fixed low bit into every sample before the offset
	// subtraction. It compensates the truncation of the left-align and
	// averages to zero over a symmetric waveform.
	roundingBit uint16 = 1 << (filterShift - 10)
)

// DCFilter tracks the slowly drifting zero reference of one sampled phase.
// The drift accumulator is continuous and never reset; the cached offset is
// refreshed once per AC half-cycle from the accumulator's high bits.
//
// There is no clamp on the offset, so the filter can track a miscalibrated
// front end anywhere in the ADC range. The trade-off: with the input stuck at
// a rail, the 16-bit signed difference wraps sign. That behavior is
// deterministic and covered by tests, not detected at runtime.
type DCFilter struct {
	acc    uint32
	offset uint16
}

// NewDCFilter returns a filter seeded at the nominal mid-point.
func NewDCFilter() *DCFilter {
	return &DCFilter{
		acc:    uint32(NominalOffset) << filterShift,
		offset: NominalOffset,
	}
}

// ProcessSample returns the signed deviation of a raw left-aligned voltage
// sample from the cached offset and feeds the drift integrator.
func (f *DCFilter) ProcessSample(raw uint16) int16 {
	d := int16((raw | roundingBit) - f.offset)
	f.acc += uint32(int32(d))
	return d
}

// Deviation returns the signed deviation of a raw sample without feeding the
// integrator. Used for the current channel, which shares the voltage bias.
func (f *DCFilter) Deviation(raw uint16) int16 {
	return int16((raw | roundingBit) - f.offset)
}

// Refresh recomputes the cached offset from the accumulator. Call once per AC
// half-cycle; immediately afterwards Offset() == accumulator >> 15 holds.
func (f *DCFilter) Refresh() {
	f.offset = uint16(f.acc >> filterShift)
}

// Offset returns the cached DC offset in left-aligned ADC counts.
func (f *DCFilter) Offset() uint16 { return f.offset }

// Accumulator exposes the raw drift accumulator for diagnostics and tests.
func (f *DCFilter) Accumulator() uint32 { return f.acc }
