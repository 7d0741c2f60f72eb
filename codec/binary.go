package codec

import (
	"encoding"
	"errors"
)

// ErrNotBinaryMarshaler is returned when Binary is handed a value that does
// not implement encoding.BinaryMarshaler/BinaryUnmarshaler.
var ErrNotBinaryMarshaler = errors.New("value does not support binary marshaling")

// Binary delegates to the value's own little-endian binary format.
//
// It only accepts values implementing encoding.BinaryMarshaler (Marshal) and
// encoding.BinaryUnmarshaler (Unmarshal). Summary snapshots implement both.
type Binary struct{}

// Marshal encodes the value via its BinaryMarshaler implementation.
func (Binary) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, ErrNotBinaryMarshaler
	}
	return m.MarshalBinary()
}

// Unmarshal decodes the data via the value's BinaryUnmarshaler implementation.
func (Binary) Unmarshal(data []byte, v any) error {
	u, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return ErrNotBinaryMarshaler
	}
	return u.UnmarshalBinary(data)
}

// Name returns the unique name of the codec ("binary").
func (Binary) Name() string { return "binary" }
