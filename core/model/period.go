package model

import "math"

// PeriodResult is the snapshot produced at each measurement period boundary.
// Power and voltage are in relative fixed-point units; absolute calibration
// is applied externally.
type PeriodResult struct {
	// AveragePower is the mean real power over the period. Positive means
	// importing from the grid, negative means exporting surplus.
	AveragePower int64
	// SumVSquared is the accumulated squared voltage deviation.
	SumVSquared uint64
	// Samples is the number of sample pairs accumulated.
	Samples uint32
}

// RMSVoltage returns the root-mean-square voltage of the period in relative
// units.
func (r PeriodResult) RMSVoltage() float64 {
	if r.Samples == 0 {
		return 0
	}
	return math.Sqrt(float64(r.SumVSquared) / float64(r.Samples))
}
