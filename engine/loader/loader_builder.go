package loader

import "log"

// LoaderBuilderOption is a functional option used to configure a Loader during construction.
type LoaderBuilderOption func(*loader)

// WithLogger sets the logger used for skipped-primitive diagnostics.
//
// Parameters:
//   - logger: the logger to use, nil keeps log.Default()
//
// Returns:
//   - LoaderBuilderOption: a function that sets the logger
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithUnitScale recenters every imported mesh on the origin and scales its largest extent to 1.
//
// Parameters:
//   - enabled: true to normalize mesh size
//
// Returns:
//   - LoaderBuilderOption: a function that sets unit scaling
func WithUnitScale(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.unitScale = enabled
	}
}
