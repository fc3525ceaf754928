package acquisition

import "github.com/kilianp07/pvrouter/core/model"

// Scaling of the power path. Deviations are reduced before the multiply so
// the product stays within 32 bits, then the product is rescaled back to unit
// scale. The right shift of the product floors toward negative infinity; the
// resulting small bias is tolerated, not corrected.
const (
	reduceShift  = 2
	rescaleShift = 8
)

// CycleAccumulator gathers the signed power sum, the unsigned squared-voltage
// sum and the sample count for the current measurement period. Sums are wide
// enough that overflow within one period is impossible for any realistic
// amplitude; that is a design constraint, not a runtime check.
type CycleAccumulator struct {
	sumPower    int64
	sumVSquared uint64
	samples     uint32
}

// AddPair accumulates the instantaneous real power of one aligned
// voltage/current deviation pair. Positive contributions mean importing.
func (a *CycleAccumulator) AddPair(vDelta, iDelta int16) {
	v := int32(vDelta >> reduceShift)
	i := int32(iDelta >> reduceShift)
	a.sumPower += int64(v * i >> rescaleShift)
}

// AddVoltage accumulates the squared voltage deviation and counts the sample.
func (a *CycleAccumulator) AddVoltage(vDelta int16) {
	v := int32(vDelta >> reduceShift)
	a.sumVSquared += uint64(v * v >> rescaleShift)
	a.samples++
}

// Samples returns the number of samples accumulated so far.
func (a *CycleAccumulator) Samples() uint32 { return a.samples }

// Snapshot exposes the period result for the samples accumulated so far.
func (a *CycleAccumulator) Snapshot() model.PeriodResult {
	res := model.PeriodResult{
		SumVSquared: a.sumVSquared,
		Samples:     a.samples,
	}
	if a.samples > 0 {
		res.AveragePower = a.sumPower / int64(a.samples)
	}
	return res
}

// Reset clears the sums and the count for the next period.
func (a *CycleAccumulator) Reset() {
	a.sumPower = 0
	a.sumVSquared = 0
	a.samples = 0
}
