package dispatch

import (
	"fmt"

	"github.com/kilianp07/pvrouter/core/model"
)

// Config defines the dispatch engine settings.
type Config struct {
	// Loads lists the dispatchable loads in priority order: index 0 gets
	// surplus first and is shed last.
	Loads []model.LoadSpec `json:"loads"`
	// LocalLoads is the number of leading loads driven by local ports; the
	// remainder are remote loads commanded over the radio link.
	LocalLoads int `json:"local_loads"`
	// SettleTicks is the shared cooldown after any transition during which no
	// load may change.
	SettleTicks uint32 `json:"settle_ticks"`
	// StartupTicks is the quiet period at boot before the first transition is
	// allowed. Must be nonzero.
	StartupTicks uint32 `json:"startup_ticks"`
	// EWMADivisor is the smoothing window of the cloud-immunity averager.
	EWMADivisor int `json:"ewma_divisor"`
}

// SetDefaults applies engine defaults.
func (c *Config) SetDefaults() {
	if c.SettleTicks == 0 {
		c.SettleTicks = 5
	}
	if c.StartupTicks == 0 {
		c.StartupTicks = 10
	}
	if c.EWMADivisor == 0 {
		c.EWMADivisor = 8
	}
	if c.LocalLoads == 0 {
		c.LocalLoads = len(c.Loads)
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if len(c.Loads) == 0 {
		return fmt.Errorf("at least one load is required")
	}
	if len(c.Loads) > 32 {
		return fmt.Errorf("at most 32 loads are supported")
	}
	for _, l := range c.Loads {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	if c.LocalLoads < 0 || c.LocalLoads > len(c.Loads) {
		return fmt.Errorf("local_loads must be between 0 and %d", len(c.Loads))
	}
	if len(c.Loads)-c.LocalLoads > 8 {
		return fmt.Errorf("at most 8 remote loads fit the radio byte")
	}
	if c.StartupTicks == 0 {
		return fmt.Errorf("startup_ticks must be nonzero")
	}
	if c.EWMADivisor < 1 {
		return fmt.Errorf("ewma_divisor must be at least 1")
	}
	return nil
}
