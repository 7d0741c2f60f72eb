package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm applied to a frame payload.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, good for hot paths).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

// frameMagic identifies a summary exchange frame ("SBF1").
const frameMagic uint32 = 0x53424631

// Frame decode errors.
var (
	ErrFrameTooShort       = errors.New("frame too short")
	ErrBadMagic            = errors.New("bad frame magic")
	ErrChecksumMismatch    = errors.New("frame checksum mismatch")
	ErrUnknownCodec        = errors.New("unknown codec name in frame header")
	ErrUnknownCompression  = errors.New("unknown compression type in frame header")
	ErrFrameLengthMismatch = errors.New("frame length mismatch")
)

// ZSTD encoder/decoder pools; EncodeAll/DecodeAll are cheap once constructed.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Frame header layout (little-endian):
//
//	[magic:uint32][version:uint8][compression:uint8][codecNameLen:uint8]
//	[codecName:bytes][uncompressedSize:uint32][payloadSize:uint32]
//	[checksum:uint64][payload:bytes]
//
// The checksum is xxhash64 over the encoded (uncompressed) payload, so
// corruption is detected regardless of the compression algorithm.
const frameVersion = 1

// EncodeFrame encodes v with the codec, optionally compresses the payload and
// prepends a self-describing header.
//
// If compression does not shrink the payload it is stored uncompressed and the
// header records CompressionNone; callers always decode via DecodeFrame.
func EncodeFrame(c Codec, compression CompressionType, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}

	encoded, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frame encode: %w", err)
	}

	sum := xxhash.Sum64(encoded)

	payload := encoded
	switch compression {
	case CompressionNone:
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(encoded))
		dst := make([]byte, bound)
		n, err := lz4.CompressBlock(encoded, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("frame lz4 compress: %w", err)
		}
		if n == 0 || n >= len(encoded) {
			compression = CompressionNone // incompressible
		} else {
			payload = dst[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed := enc.EncodeAll(encoded, nil)
		putZstdEncoder(enc)
		if len(compressed) >= len(encoded) {
			compression = CompressionNone
		} else {
			payload = compressed
		}
	default:
		return nil, ErrUnknownCompression
	}

	name := c.Name()
	if len(name) > 255 {
		return nil, errors.New("codec name too long")
	}

	headerLen := 4 + 1 + 1 + 1 + len(name) + 4 + 4 + 8
	out := make([]byte, headerLen+len(payload))

	binary.LittleEndian.PutUint32(out[0:], frameMagic)
	out[4] = frameVersion
	out[5] = byte(compression)
	out[6] = byte(len(name))
	copy(out[7:], name)

	off := 7 + len(name)
	binary.LittleEndian.PutUint32(out[off:], uint32(len(encoded)))
	binary.LittleEndian.PutUint32(out[off+4:], uint32(len(payload)))
	binary.LittleEndian.PutUint64(out[off+8:], sum)
	copy(out[off+16:], payload)

	return out, nil
}

// DecodeFrame validates the header and checksum, decompresses the payload and
// decodes it into v using the codec named in the header.
func DecodeFrame(data []byte, v any) error {
	if len(data) < 7 {
		return ErrFrameTooShort
	}
	if binary.LittleEndian.Uint32(data[0:]) != frameMagic {
		return ErrBadMagic
	}
	if data[4] != frameVersion {
		return fmt.Errorf("unsupported frame version %d", data[4])
	}

	compression := CompressionType(data[5])
	nameLen := int(data[6])
	if len(data) < 7+nameLen+16 {
		return ErrFrameTooShort
	}
	name := string(data[7 : 7+nameLen])

	c, ok := ByName(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	off := 7 + nameLen
	uncompressedSize := binary.LittleEndian.Uint32(data[off:])
	payloadSize := binary.LittleEndian.Uint32(data[off+4:])
	sum := binary.LittleEndian.Uint64(data[off+8:])

	payload := data[off+16:]
	if uint32(len(payload)) != payloadSize {
		return ErrFrameLengthMismatch
	}

	var encoded []byte
	switch compression {
	case CompressionNone:
		if payloadSize != uncompressedSize {
			return ErrFrameLengthMismatch
		}
		encoded = payload
	case CompressionLZ4:
		encoded = make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, encoded)
		if err != nil {
			return fmt.Errorf("frame lz4 decompress: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return ErrFrameLengthMismatch
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		putZstdDecoder(dec)
		if err != nil {
			return fmt.Errorf("frame zstd decompress: %w", err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return ErrFrameLengthMismatch
		}
		encoded = decoded
	default:
		return ErrUnknownCompression
	}

	if xxhash.Sum64(encoded) != sum {
		return ErrChecksumMismatch
	}

	return c.Unmarshal(encoded, v)
}
