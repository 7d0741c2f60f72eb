package sketchbin

import (
	"encoding/binary"
	"errors"
	"math"
)

// Summary is a detached, serializable snapshot of a container's per-column
// summaries. It is the unit exchanged between distributed workers.
type Summary struct {
	NumColumns int     `json:"num_columns"`
	Offsets    []int   `json:"offsets"` // numColumns+1 segment offsets
	Entries    []Entry `json:"entries"`
}

// Summary copies the container's current state into a detached snapshot.
func (c *Container) Summary() *Summary {
	s := &Summary{
		NumColumns: c.numColumns,
		Offsets:    make([]int, c.numColumns+1),
		Entries:    make([]Entry, c.Len()),
	}
	copy(s.Offsets, c.layout)
	copy(s.Entries, c.current())
	return s
}

// validateSummary checks a snapshot's column count and layout consistency.
// Applied to deserialized peer summaries before their entries are indexed.
func (c *Container) validateSummary(s *Summary) error {
	if s.NumColumns != c.numColumns {
		return &ErrColumnMismatch{Expected: c.numColumns, Actual: s.NumColumns}
	}
	if err := validateLayout(s.Offsets, c.numColumns); err != nil {
		return err
	}
	if s.Offsets[c.numColumns] != len(s.Entries) {
		return &ErrInvalidLayout{Column: c.numColumns - 1}
	}
	return nil
}

// SetSummary replaces the container's state with the snapshot's.
// The snapshot's column count must match the container's.
func (c *Container) SetSummary(s *Summary) error {
	if err := c.validateSummary(s); err != nil {
		return err
	}

	if err := c.grow(c.active, len(s.Entries)); err != nil {
		return err
	}
	copy(c.buffers[c.active], s.Entries)
	copy(c.layout, s.Offsets)
	return nil
}

// Binary format (little-endian):
//
//	[numColumns:uint32][numEntries:uint64]
//	[offsets:uint64 x numColumns+1]
//	[value:float64][weight:float64][rmin:float64][rmax:float64] x numEntries
const summaryHeaderBytes = 4 + 8

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Summary) MarshalBinary() ([]byte, error) {
	if len(s.Offsets) != s.NumColumns+1 {
		return nil, errors.New("summary offsets length mismatch")
	}

	size := summaryHeaderBytes + 8*len(s.Offsets) + 32*len(s.Entries)
	buf := make([]byte, size)

	binary.LittleEndian.PutUint32(buf[0:], uint32(s.NumColumns))
	binary.LittleEndian.PutUint64(buf[4:], uint64(len(s.Entries)))

	off := summaryHeaderBytes
	for _, o := range s.Offsets {
		binary.LittleEndian.PutUint64(buf[off:], uint64(o))
		off += 8
	}

	for _, e := range s.Entries {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(e.Value))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(e.Weight))
		binary.LittleEndian.PutUint64(buf[off+16:], math.Float64bits(e.RMin))
		binary.LittleEndian.PutUint64(buf[off+24:], math.Float64bits(e.RMax))
		off += 32
	}

	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Summary) UnmarshalBinary(data []byte) error {
	if len(data) < summaryHeaderBytes {
		return errors.New("summary binary too short")
	}

	numColumns := int(binary.LittleEndian.Uint32(data[0:]))
	numEntries := int(binary.LittleEndian.Uint64(data[4:]))

	expected := summaryHeaderBytes + 8*(numColumns+1) + 32*numEntries
	if len(data) != expected {
		return errors.New("summary binary length mismatch")
	}

	s.NumColumns = numColumns
	s.Offsets = make([]int, numColumns+1)
	s.Entries = make([]Entry, numEntries)

	off := summaryHeaderBytes
	for i := range s.Offsets {
		s.Offsets[i] = int(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}

	for i := range s.Entries {
		s.Entries[i] = Entry{
			Value:  math.Float64frombits(binary.LittleEndian.Uint64(data[off:])),
			Weight: math.Float64frombits(binary.LittleEndian.Uint64(data[off+8:])),
			RMin:   math.Float64frombits(binary.LittleEndian.Uint64(data[off+16:])),
			RMax:   math.Float64frombits(binary.LittleEndian.Uint64(data[off+24:])),
		}
		off += 32
	}

	return nil
}
