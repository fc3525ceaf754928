package simulator

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a stretch of generated waveform in right-aligned ADC
// counts. It serves as the floating-point reference the fixed-point pipeline
// is checked against.
type Stats struct {
	MeanVoltage float64
	RMSVoltage  float64
	MeanPower   float64
}

// Measure runs the source for the given number of samples and reports the
// reference statistics of the deviations around the configured DC level.
func Measure(src *Source, samples int) Stats {
	vs := make([]float64, samples)
	sq := make([]float64, samples)
	ps := make([]float64, samples)
	for n := 0; n < samples; n++ {
		rawV, rawI := src.Next()
		v := float64(rawV>>6) - src.cfg.DCLevel
		i := float64(rawI>>6) - src.cfg.DCLevel
		vs[n] = v
		sq[n] = v * v
		ps[n] = v * i
	}
	return Stats{
		MeanVoltage: stat.Mean(vs, nil),
		RMSVoltage:  math.Sqrt(stat.Mean(sq, nil)),
		MeanPower:   stat.Mean(ps, nil),
	}
}
