package codec

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// payload is a minimal binary-marshalable test type.
type payload struct {
	A uint64
	B uint64
}

func (p *payload) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:], p.A)
	binary.LittleEndian.PutUint64(buf[8:], p.B)
	return buf, nil
}

func (p *payload) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return errors.New("payload length mismatch")
	}
	p.A = binary.LittleEndian.Uint64(data[0:])
	p.B = binary.LittleEndian.Uint64(data[8:])
	return nil
}

func TestByName(t *testing.T) {
	for _, name := range []string{"binary", "json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		require.Equal(t, name, c.Name())
	}

	_, ok := ByName("protobuf")
	require.False(t, ok)
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	in := &payload{A: 42, B: 7}

	data, err := Binary{}.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, Binary{}.Unmarshal(data, &out))
	require.Equal(t, *in, out)
}

func TestBinaryCodecRejectsPlainStruct(t *testing.T) {
	_, err := Binary{}.Marshal(struct{ X int }{X: 1})
	require.ErrorIs(t, err, ErrNotBinaryMarshaler)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	type doc struct {
		Name  string    `json:"name"`
		Score []float64 `json:"score"`
	}
	in := doc{Name: "col", Score: []float64{1, 2.5}}

	data, err := JSON{}.Marshal(in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, JSON{}.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestMustMarshalPanics(t *testing.T) {
	require.Panics(t, func() {
		MustMarshal(Binary{}, struct{}{})
	})
}
