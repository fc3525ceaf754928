package dispatch

// EWMA is the cloud-immunity averager: a single-pole low-pass over period
// power results so brief transients (a cloud shadow, a kettle) do not trigger
// a dispatch change that must be reversed moments later.
type EWMA struct {
	avg int64
	div int64
}

// NewEWMA creates an averager with the given window divisor. The initial
// value is zero. A divisor below one is treated as one (no smoothing).
func NewEWMA(divisor int) *EWMA {
	d := int64(divisor)
	if d < 1 {
		d = 1
	}
	return &EWMA{div: d}
}

// Update folds a new period value into the average and returns the smoothed
// value. The division truncates toward zero; the resulting long-run bias is
// accepted.
func (e *EWMA) Update(v int64) int64 {
	e.avg += (v - e.avg) / e.div
	return e.avg
}

// Value returns the current smoothed value.
func (e *EWMA) Value() int64 { return e.avg }
