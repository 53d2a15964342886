package butylene

// processorConfig accumulates ProcessorOption values before NewProcessor
// builds the Processor and its SignatureSource from them.
type processorConfig struct {
	resolver            TypeResolver
	sourceOpts          []SourceOption
	strictUnknownKeys   bool
	enumCaseInsensitive bool
}

// ProcessorOption configures a Processor at construction time.
type ProcessorOption func(*processorConfig)

// WithTypeResolver registers resolver for abstract (interface) argument
// and field types.
func WithTypeResolver(resolver TypeResolver) ProcessorOption {
	return func(c *processorConfig) {
		c.resolver = resolver
	}
}

// WithCustomSignature registers sig ahead of the signature source's
// automatic classification for its own return type.
func WithCustomSignature(sig Signature) ProcessorOption {
	return func(c *processorConfig) {
		c.sourceOpts = append(c.sourceOpts, WithSourceCustomSignature(sig))
	}
}

// WithStrictUnknownKeys makes an extra key in a named-argument Node a
// reportable error (ErrUnknownKey) rather than silently ignored.
func WithStrictUnknownKeys() ProcessorOption {
	return func(c *processorConfig) {
		c.strictUnknownKeys = true
	}
}

// WithEnumCaseInsensitive sets the processor's enumCaseInsensitive flag.
// Enum/TextUnmarshaler text is still passed unchanged to the type's own
// UnmarshalText, so whether case is ignored depends on that method; the
// flag does not change how the text is matched.
func WithEnumCaseInsensitive() ProcessorOption {
	return func(c *processorConfig) {
		c.enumCaseInsensitive = true
	}
}

// WithBoundedSignatureCache bounds the Processor's signature source to an
// LRU of the given size, instead of the default unbounded map.
func WithBoundedSignatureCache(size int) ProcessorOption {
	return func(c *processorConfig) {
		c.sourceOpts = append(c.sourceOpts, WithBoundedCache(size))
	}
}
