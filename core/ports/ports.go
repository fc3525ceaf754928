// Package ports abstracts the physical output stage. The router core only
// produces bitmasks; turning bits into port writes is a collaborator concern.
package ports

import "github.com/kilianp07/pvrouter/core/logger"

// PortWriter applies an output bitmask, bit i = output i energized. Writes
// must be idempotent: the control loop re-applies the full mask every tick.
type PortWriter interface {
	Write(mask uint16) error
}

// NopWriter discards all writes.
type NopWriter struct{}

func (NopWriter) Write(uint16) error { return nil }

// LogWriter logs mask changes. It is the default output stage when no
// hardware backend is wired in.
type LogWriter struct {
	log  logger.Logger
	last uint16
	init bool
}

// NewLogWriter creates a LogWriter.
func NewLogWriter(log logger.Logger) *LogWriter {
	return &LogWriter{log: log}
}

// Write logs the mask when it differs from the previous write.
func (w *LogWriter) Write(mask uint16) error {
	if w.init && mask == w.last {
		return nil
	}
	w.init = true
	w.last = mask
	if w.log != nil {
		w.log.Infof("ports <- %#06b", mask)
	}
	return nil
}
