package butylene

import (
	"context"
	"reflect"
	"sync"
)

// Codec converts between raw bytes and an Element tree. Unlike the
// teacher's Codec, whose Unmarshal/Marshal operate directly on a typed
// value, this Codec's boundary sits below the mapping engine: it only
// ever produces/consumes an Element, and the Processor does the
// typed mapping on top of that.
type Codec interface {
	ContentType() string
	Marshal(Element) ([]byte, error)
	Unmarshal([]byte) (Element, error)
}

// Decode decodes data with codec and maps the result into T.
func Decode[T any](ctx context.Context, codec Codec, data []byte) (T, error) {
	var zero T
	element, err := codec.Unmarshal(data)
	if err != nil {
		return zero, wrapTop("decode", err)
	}
	proc, err := processorFor[T](codec)
	if err != nil {
		return zero, err
	}
	return proc.DataFromElement(ctx, element)
}

// Encode maps obj to an Element and encodes it with codec.
func Encode[T any](ctx context.Context, codec Codec, obj T) ([]byte, error) {
	proc, err := processorFor[T](codec)
	if err != nil {
		return nil, err
	}
	element, err := proc.ElementFromData(ctx, obj)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(element)
}

// processorRegistry caches a default Processor per (T, codec content
// type) pair, grounded on the same read-locked-fast-path /
// write-locked-double-checked-build pattern used by the signature source.
// Decode/Encode are meant as zero-configuration entry points; anything
// needing custom ProcessorOptions should build its own Processor via
// NewProcessor and call DataFromElement/ElementFromData directly.
var (
	processorRegistryMu sync.RWMutex
	processorRegistry   = make(map[processorRegistryKey]any)
)

type processorRegistryKey struct {
	typ         reflect.Type
	contentType string
}

func processorFor[T any](codec Codec) (*Processor[T], error) {
	key := processorRegistryKey{typ: reflect.TypeFor[T](), contentType: codec.ContentType()}

	processorRegistryMu.RLock()
	if cached, ok := processorRegistry[key]; ok {
		processorRegistryMu.RUnlock()
		return cached.(*Processor[T]), nil
	}
	processorRegistryMu.RUnlock()

	processorRegistryMu.Lock()
	defer processorRegistryMu.Unlock()

	if cached, ok := processorRegistry[key]; ok {
		return cached.(*Processor[T]), nil
	}

	proc, err := NewProcessor[T](codec)
	if err != nil {
		return nil, err
	}
	processorRegistry[key] = proc
	return proc, nil
}

// ResetProcessorRegistry clears the Decode/Encode processor cache. Mainly
// useful for test isolation between cases that register different
// ProcessorOptions for the same T via their own NewProcessor calls.
func ResetProcessorRegistry() {
	processorRegistryMu.Lock()
	defer processorRegistryMu.Unlock()
	processorRegistry = make(map[processorRegistryKey]any)
}
