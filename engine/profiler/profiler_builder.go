package profiler

import (
	"log"
	"time"
)

// ProfilerBuilderOption is a functional option used to configure a Profiler during construction.
type ProfilerBuilderOption func(*profiler)

// WithInterval sets how often stats are reported. Non-positive values keep the 1 second default.
//
// Parameters:
//   - interval: the report interval
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the interval
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the logger reports are written to.
//
// Parameters:
//   - logger: the logger to use, nil keeps log.Default()
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) ProfilerBuilderOption {
	return func(p *profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}
