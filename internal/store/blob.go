package store

import (
	"encoding/binary"
	"fmt"
	"math"

	verrors "github.com/Aman-CERP/versio/internal/errors"
)

// EncodeEmbedding packs a vector as little-endian float32 bytes.
func EncodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// DecodeEmbedding unpacks little-endian float32 bytes; the vector length is
// len(b)/4. A nil or empty blob decodes to an empty vector.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, verrors.New(verrors.ErrCodeCorruptIndex,
			fmt.Sprintf("embedding blob length %d is not a multiple of 4", len(b)), nil)
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
