package soa

type options struct {
	capacity    int
	logger      *Logger
	compression CompressionType
}

// Option configures a Vector at construction time.
type Option func(*options)

// WithCapacity pre-allocates room for n records.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger sets the logger used for growth and snapshot diagnostics.
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCompression selects the block compression applied to snapshot
// sections written by WriteTo. Reading auto-detects from the file header,
// so this only affects writes.
func WithCompression(c CompressionType) Option {
	return func(o *options) {
		o.compression = c
	}
}

func defaultOptions() options {
	return options{
		logger:      NoopLogger(),
		compression: CompressionNone,
	}
}
