package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrSizeMismatch = errors.New("state texture size mismatch")
	ErrInvalidGrid  = errors.New("grid size must be positive")
)

// TexelComponents is the number of float32 channels stored per texel (RGBA).
// The simulation only uses RGB; A is kept at 1 so the layout matches RGBA32Float on the GPU.
const TexelComponents = 4

// StateTexture is an N×N float texture holding one particle vector per texel.
// Texel (x, y) lives at Data[(y*Width+x)*4 : +4].
type StateTexture struct {
	Width  int
	Height int
	Data   []float32
}

func NewStateTexture(width, height int) *StateTexture {
	if width <= 0 || height <= 0 {
		width, height = 0, 0
	}
	t := &StateTexture{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height*TexelComponents),
	}
	t.Clear()
	return t
}

// Len returns the number of texels.
func (t *StateTexture) Len() int {
	return t.Width * t.Height
}

func (t *StateTexture) index(x, y int) int {
	return (y*t.Width + x) * TexelComponents
}

// At returns the vector stored at (x, y). Coordinates wrap (repeat addressing).
func (t *StateTexture) At(x, y int) mgl32.Vec3 {
	x, y = wrap(x, t.Width), wrap(y, t.Height)
	i := t.index(x, y)
	return mgl32.Vec3{t.Data[i], t.Data[i+1], t.Data[i+2]}
}

// Set stores v at (x, y). Coordinates wrap (repeat addressing).
func (t *StateTexture) Set(x, y int, v mgl32.Vec3) {
	x, y = wrap(x, t.Width), wrap(y, t.Height)
	i := t.index(x, y)
	t.Data[i] = v[0]
	t.Data[i+1] = v[1]
	t.Data[i+2] = v[2]
	t.Data[i+3] = 1
}

// AtIndex addresses the texel of particle i, i.e. (i mod W, i div W).
func (t *StateTexture) AtIndex(i int) mgl32.Vec3 {
	return t.At(i%t.Width, i/t.Width)
}

func (t *StateTexture) SetIndex(i int, v mgl32.Vec3) {
	t.Set(i%t.Width, i/t.Width, v)
}

// Clear zeroes RGB and sets A to 1 on every texel.
func (t *StateTexture) Clear() {
	for i := 0; i < len(t.Data); i += TexelComponents {
		t.Data[i] = 0
		t.Data[i+1] = 0
		t.Data[i+2] = 0
		t.Data[i+3] = 1
	}
}

// CopyFrom overwrites t with the contents of src. Both must be the same size.
func (t *StateTexture) CopyFrom(src *StateTexture) error {
	if src == nil {
		return fmt.Errorf("copy state texture: nil source")
	}
	if src.Width != t.Width || src.Height != t.Height {
		return fmt.Errorf("copy %dx%d into %dx%d: %w", src.Width, src.Height, t.Width, t.Height, ErrSizeMismatch)
	}
	copy(t.Data, src.Data)
	return nil
}

func (t *StateTexture) Clone() *StateTexture {
	c := &StateTexture{Width: t.Width, Height: t.Height, Data: make([]float32, len(t.Data))}
	copy(c.Data, t.Data)
	return c
}

// Bytes returns the texel data as little-endian bytes, ready for a texture upload.
func (t *StateTexture) Bytes() []byte {
	return float32Bytes(t.Data)
}

// BytesPerRow is the tightly packed row pitch of the texture.
func (t *StateTexture) BytesPerRow() uint32 {
	return uint32(t.Width * TexelComponents * 4)
}

func wrap(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// GridUV is the normalized grid coordinate of particle i on an n×n grid,
// used both for simulation addressing and for initial render-space placement.
func GridUV(i, n int) (float32, float32) {
	return float32(i%n) / float32(n), float32(i/n) / float32(n)
}
