package acquisition

import (
	"fmt"

	"github.com/kilianp07/pvrouter/core/model"
)

// Config defines the sampling geometry of the measurement engine.
type Config struct {
	// SampleRateHz is the fixed cadence of the sample stream.
	SampleRateHz int `json:"sample_rate_hz"`
	// LineFrequencyHz is the nominal mains frequency.
	LineFrequencyHz int `json:"line_frequency_hz"`
	// CyclesPerPeriod is the number of complete mains cycles accumulated
	// before a period result is produced.
	CyclesPerPeriod int `json:"cycles_per_period"`
}

// SetDefaults applies the nominal front-end geometry.
func (c *Config) SetDefaults() {
	if c.SampleRateHz == 0 {
		c.SampleRateHz = 9600
	}
	if c.LineFrequencyHz == 0 {
		c.LineFrequencyHz = 50
	}
	if c.CyclesPerPeriod == 0 {
		c.CyclesPerPeriod = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be positive")
	}
	if c.LineFrequencyHz <= 0 {
		return fmt.Errorf("line_frequency_hz must be positive")
	}
	if c.CyclesPerPeriod <= 0 {
		return fmt.Errorf("cycles_per_period must be positive")
	}
	return nil
}

// SampleSource delivers aligned voltage/current sample pairs, left-aligned
// 10-bit readings, at the ADC cadence. Implementations own the pacing.
type SampleSource interface {
	Next() (rawV, rawI uint16)
}

type polarity int8

const (
	polarityUnknown polarity = iota
	polarityPositive
	polarityNegative
)

// Engine fuses the DC filter and the cycle accumulator. It detects mains
// zero crossings on the voltage deviation, refreshes the DC offset once per
// half-cycle and emits a period result every CyclesPerPeriod cycles.
//
// Engine runs on the sampling goroutine only; it holds no locks and never
// blocks. The per-sample path is a handful of integer operations.
type Engine struct {
	filter *DCFilter
	acc    CycleAccumulator

	cyclesPerPeriod int
	cycles          int
	last            polarity
}

// NewEngine creates a measurement engine for one phase.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("acquisition config: %w", err)
	}
	return &Engine{
		filter:          NewDCFilter(),
		cyclesPerPeriod: cfg.CyclesPerPeriod,
	}, nil
}

// Filter exposes the DC filter for diagnostics.
func (e *Engine) Filter() *DCFilter { return e.filter }

// ProcessPair consumes one aligned voltage/current sample pair. The second
// return value is true when a measurement period completed on this sample;
// the accumulators are then already reset for the next period.
func (e *Engine) ProcessPair(rawV, rawI uint16) (model.PeriodResult, bool) {
	vDelta := e.filter.ProcessSample(rawV)
	iDelta := e.filter.Deviation(rawI)

	e.acc.AddPair(vDelta, iDelta)
	e.acc.AddVoltage(vDelta)

	p := polarityPositive
	if vDelta < 0 {
		p = polarityNegative
	}
	if e.last == polarityUnknown {
		e.last = p
		return model.PeriodResult{}, false
	}
	if p == e.last {
		return model.PeriodResult{}, false
	}

	// Zero crossing: refresh the offset once per half-cycle and count a full
	// cycle at the start of each positive half.
	e.filter.Refresh()
	e.last = p
	if p != polarityPositive {
		return model.PeriodResult{}, false
	}
	e.cycles++
	if e.cycles < e.cyclesPerPeriod {
		return model.PeriodResult{}, false
	}
	res := e.acc.Snapshot()
	e.acc.Reset()
	e.cycles = 0
	return res, true
}
