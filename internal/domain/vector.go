package domain

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector packs v the way Redis stores FLOAT32 vector fields:
// 4 bytes per component, little-endian IEEE-754, no header.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// DecodeVector reverses EncodeVector bit for bit.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not whole float32s", len(b))
	}
	v := make([]float32, 0, len(b)/4)
	for off := 0; off < len(b); off += 4 {
		v = append(v, math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
	}
	return v, nil
}
