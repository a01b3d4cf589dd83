package linear_buffer

// linearBufferConfig collects builder options independently of the record type so the same options can
// configure buffers of any record kind.
type linearBufferConfig struct {
	label      string
	byteBudget int
	factory    StorageFactory
}

// LinearBufferBuilderOption is a functional option used to configure a LinearBuffer during construction.
type LinearBufferBuilderOption func(*linearBufferConfig)

// WithLabel sets the debug label used for the storage and in diagnostics.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - LinearBufferBuilderOption: a function that sets the label
func WithLabel(label string) LinearBufferBuilderOption {
	return func(c *linearBufferConfig) {
		c.label = label
	}
}

// WithByteBudget sets the byte budget the record capacity is derived from.
// Non-positive values keep DefaultByteBudget.
//
// Parameters:
//   - bytes: the byte budget
//
// Returns:
//   - LinearBufferBuilderOption: a function that sets the byte budget
func WithByteBudget(bytes int) LinearBufferBuilderOption {
	return func(c *linearBufferConfig) {
		if bytes > 0 {
			c.byteBudget = bytes
		}
	}
}

// WithStorageFactory sets the factory used to create backing storage. A nil factory keeps NewHostStorage.
//
// Parameters:
//   - factory: the StorageFactory to use
//
// Returns:
//   - LinearBufferBuilderOption: a function that sets the storage factory
func WithStorageFactory(factory StorageFactory) LinearBufferBuilderOption {
	return func(c *linearBufferConfig) {
		if factory != nil {
			c.factory = factory
		}
	}
}
