// Package codec centralizes payload encoding for sketch summaries.
//
// Codec selection is a wire-compatibility boundary: summary payloads exchanged
// between distributed workers record the codec name in their frame header, and
// every worker in a group must be able to resolve that name via ByName.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for summary exchange unless overridden.
//
// Binary is the default because summary payloads are large flat float arrays;
// JSON exists for debugging and cross-tool inspection.
var Default Codec = Binary{}

// ByName returns a built-in codec by its stable name.
//
// Frame headers store the codec name so that a receiving worker can decode
// payloads produced with a non-default codec.
func ByName(name string) (Codec, bool) {
	switch name {
	case "binary":
		return Binary{}, true
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
