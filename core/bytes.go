package core

import (
	"encoding/binary"
	"math"
)

func float32Bytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// DecodeTexels fills t from tightly or row-padded little-endian RGBA32F bytes.
func (t *StateTexture) DecodeTexels(b []byte, bytesPerRow uint32) error {
	row := int(t.BytesPerRow())
	if int(bytesPerRow) < row || len(b) < int(bytesPerRow)*(t.Height-1)+row {
		return ErrSizeMismatch
	}
	for y := 0; y < t.Height; y++ {
		src := b[y*int(bytesPerRow) : y*int(bytesPerRow)+row]
		dst := t.Data[y*t.Width*TexelComponents : (y+1)*t.Width*TexelComponents]
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		}
	}
	return nil
}
