package lifecycle

import "log"

// ListenerBuilderOption is a functional option used to configure a Listener during construction.
type ListenerBuilderOption func(*listener)

// WithLogger sets the logger used to report resetting transitions.
//
// Parameters:
//   - logger: the logger to use, nil keeps log.Default()
//
// Returns:
//   - ListenerBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) ListenerBuilderOption {
	return func(l *listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}
