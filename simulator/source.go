// Package simulator synthesizes a mains waveform as left-aligned ADC sample
// pairs, standing in for the analog front end. Only sinusoids are produced;
// the interesting knobs are amplitude, current phase and a slow DC drift.
package simulator

import (
	"fmt"
	"math"
	"time"
)

// Config describes the synthetic waveform.
type Config struct {
	// VoltageAmplitude is the voltage peak in right-aligned ADC counts.
	VoltageAmplitude float64 `json:"voltage_amplitude"`
	// CurrentAmplitude is the current peak in right-aligned ADC counts.
	CurrentAmplitude float64 `json:"current_amplitude"`
	// PhaseDegrees shifts the current relative to the voltage. 0 means pure
	// import, 180 pure export.
	PhaseDegrees float64 `json:"phase_degrees"`
	// DCLevel is the waveform mid-point in ADC counts.
	DCLevel float64 `json:"dc_level"`
	// DCDriftPerSecond shifts the mid-point over time, in counts per second,
	// to exercise the offset filter.
	DCDriftPerSecond float64 `json:"dc_drift_per_second"`
	// Pace throttles Next to real-time cadence, one mains cycle at a time.
	Pace bool `json:"pace"`
}

// SetDefaults applies a 230 V-ish calibration at mid-range.
func (c *Config) SetDefaults() {
	if c.VoltageAmplitude == 0 {
		c.VoltageAmplitude = 400
	}
	if c.CurrentAmplitude == 0 {
		c.CurrentAmplitude = 200
	}
	if c.DCLevel == 0 {
		c.DCLevel = 512
	}
}

// Validate checks the waveform stays inside the ADC range.
func (c Config) Validate() error {
	if c.DCLevel+c.VoltageAmplitude > 1023 || c.DCLevel-c.VoltageAmplitude < 0 {
		return fmt.Errorf("voltage waveform exceeds ADC range")
	}
	if c.DCLevel+c.CurrentAmplitude > 1023 || c.DCLevel-c.CurrentAmplitude < 0 {
		return fmt.Errorf("current waveform exceeds ADC range")
	}
	return nil
}

// Source implements acquisition.SampleSource with a synthetic sinusoid.
type Source struct {
	cfg        Config
	sampleRate int
	frequency  float64
	phase      float64

	n         uint64
	cycleLen  int
	lastPause time.Time
}

// New creates a source at the given sampling geometry.
func New(cfg Config, sampleRateHz, lineFrequencyHz int) *Source {
	cfg.SetDefaults()
	return &Source{
		cfg:        cfg,
		sampleRate: sampleRateHz,
		frequency:  float64(lineFrequencyHz),
		phase:      cfg.PhaseDegrees * math.Pi / 180,
		cycleLen:   sampleRateHz / lineFrequencyHz,
	}
}

// clampADC keeps a right-aligned value inside the 10-bit range.
func clampADC(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 1023 {
		return 1023
	}
	return uint16(v)
}

// Next returns the next aligned voltage/current pair, left-aligned. When
// pacing is enabled it sleeps once per mains cycle.
func (s *Source) Next() (uint16, uint16) {
	t := float64(s.n) / float64(s.sampleRate)
	angle := 2 * math.Pi * s.frequency * t
	dc := s.cfg.DCLevel + s.cfg.DCDriftPerSecond*t

	v := clampADC(dc + s.cfg.VoltageAmplitude*math.Sin(angle))
	i := clampADC(dc + s.cfg.CurrentAmplitude*math.Sin(angle-s.phase))

	s.n++
	if s.cfg.Pace && s.cycleLen > 0 && s.n%uint64(s.cycleLen) == 0 {
		s.pace()
	}
	return v << 6, i << 6
}

func (s *Source) pace() {
	cycle := time.Duration(float64(time.Second) / s.frequency)
	now := time.Now()
	if !s.lastPause.IsZero() {
		if d := cycle - now.Sub(s.lastPause); d > 0 {
			time.Sleep(d)
		}
	}
	s.lastPause = time.Now()
}
