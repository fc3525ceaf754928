package model

import "fmt"

// LoadSpec describes one dispatchable load. The position of a spec in the
// engine's load list is its priority: index 0 is the first to receive surplus
// and the last to be shed.
type LoadSpec struct {
	// Name identifies the load in logs and metrics.
	Name string `json:"name"`
	// SurplusThreshold is the export level (positive magnitude, relative
	// power units) beyond which the load becomes eligible to turn on.
	SurplusThreshold int64 `json:"surplus_threshold"`
	// ImportThreshold is the import level above which the load becomes
	// eligible to turn off.
	ImportThreshold int64 `json:"import_threshold"`
	// MinOnTicks is the minimum number of dispatch ticks the load must stay
	// on before it may turn off again.
	MinOnTicks uint32 `json:"min_on_ticks"`
	// MinOffTicks is the minimum number of dispatch ticks the load must stay
	// off before it may turn on again.
	MinOffTicks uint32 `json:"min_off_ticks"`
}

// Validate checks threshold sanity.
func (s LoadSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("load name is required")
	}
	if s.SurplusThreshold < 0 {
		return fmt.Errorf("load %s: surplus_threshold must not be negative", s.Name)
	}
	if s.ImportThreshold < 0 {
		return fmt.Errorf("load %s: import_threshold must not be negative", s.Name)
	}
	return nil
}
