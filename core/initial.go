package core

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultNumParticles  = 128 // grid side, power of two
	DefaultLimitToBounce = 512
	// IntegrationStep scales velocity into position each frame. It must stay a power of
	// two: v*step is then exact in float32, so a fused multiply-add on the GPU rounds
	// the same as IntegratePosition.
	IntegrationStep float32 = 0.5
	// VelocityRangeX is the upper bound of the initial x velocity, sampled in [0, VelocityRangeX).
	VelocityRangeX float32 = 2
)

// VelocityInit selects how the initial velocity texture is filled.
type VelocityInit string

const (
	// VelocityInitX samples x in [0,2) and forces y = z = 0.
	VelocityInitX VelocityInit = "x"
	// VelocityInitSpread samples every component in [-2,2).
	VelocityInitSpread VelocityInit = "spread"
)

func ParseVelocityInit(s string) (VelocityInit, error) {
	switch VelocityInit(s) {
	case "", VelocityInitX:
		return VelocityInitX, nil
	case VelocityInitSpread:
		return VelocityInitSpread, nil
	}
	return "", fmt.Errorf("unknown velocity init %q", s)
}

// InitialVelocityData builds the n×n seed velocity texture.
func InitialVelocityData(n int, rng *rand.Rand, mode VelocityInit) (*StateTexture, error) {
	if n <= 0 {
		return nil, ErrInvalidGrid
	}
	tex := NewStateTexture(n, n)
	for i := 0; i < n*n; i++ {
		var v mgl32.Vec3
		switch mode {
		case VelocityInitSpread:
			v = mgl32.Vec3{
				(rng.Float32()*2 - 1) * 2,
				(rng.Float32()*2 - 1) * 2,
				(rng.Float32()*2 - 1) * 2,
			}
		default:
			v = mgl32.Vec3{rng.Float32() * VelocityRangeX, 0, 0}
		}
		tex.SetIndex(i, v)
	}
	return tex, nil
}

// InitialPositionData builds the n×n seed position texture: every particle at the origin.
func InitialPositionData(n int) (*StateTexture, error) {
	if n <= 0 {
		return nil, ErrInvalidGrid
	}
	return NewStateTexture(n, n), nil
}

func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
