package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnboundInput is returned when a pass runs before its per-frame input was bound.
var ErrUnboundInput = errors.New("pass input not bound")

// Pass transforms the previous output of its composer (self feedback) plus any bound
// inputs into dst.
type Pass[T any] interface {
	Name() string
	Run(prev, dst T) error
}

// VelocityStage is the velocity pass as seen by the simulation: it takes tPos each frame.
type VelocityStage[T any] interface {
	Pass[T]
	SetPositions(tPos T)
}

// PositionStage is the position pass as seen by the simulation: it takes tVel each frame.
type PositionStage[T any] interface {
	Pass[T]
	SetVelocities(tVel T)
}

// BounceVelocity reverses every velocity component whose position is past ±limit and
// still heading outward.
func BounceVelocity(p, v mgl32.Vec3, limit float32) mgl32.Vec3 {
	for c := 0; c < 3; c++ {
		if (p[c] > limit && v[c] > 0) || (p[c] < -limit && v[c] < 0) {
			v[c] = -v[c]
		}
	}
	return v
}

// IntegratePosition advances p by v scaled by step. Each product is rounded to float32
// before the add so results match the WGSL pass.
func IntegratePosition(p, v mgl32.Vec3, step float32) mgl32.Vec3 {
	return mgl32.Vec3{
		p[0] + float32(v[0]*step),
		p[1] + float32(v[1]*step),
		p[2] + float32(v[2]*step),
	}
}

type VelocityParams struct {
	LimitToBounce float32
}

// VelocityPass is the CPU reference of shaders/velocity.wgsl.
type VelocityPass struct {
	Params VelocityParams
	TPos   *StateTexture
}

func NewVelocityPass(limitToBounce float32) *VelocityPass {
	return &VelocityPass{Params: VelocityParams{LimitToBounce: limitToBounce}}
}

func (p *VelocityPass) Name() string { return "velocity" }

func (p *VelocityPass) SetPositions(tPos *StateTexture) { p.TPos = tPos }

func (p *VelocityPass) Run(prev, dst *StateTexture) error {
	if p.TPos == nil {
		return fmt.Errorf("velocity pass tPos: %w", ErrUnboundInput)
	}
	if err := sameSize(prev, dst, p.TPos); err != nil {
		return fmt.Errorf("velocity pass: %w", err)
	}
	for i := 0; i < dst.Len(); i++ {
		dst.SetIndex(i, BounceVelocity(p.TPos.AtIndex(i), prev.AtIndex(i), p.Params.LimitToBounce))
	}
	return nil
}

type PositionParams struct {
	Step float32
}

// PositionPass is the CPU reference of shaders/position.wgsl.
type PositionPass struct {
	Params PositionParams
	TVel   *StateTexture
}

func NewPositionPass() *PositionPass {
	return &PositionPass{Params: PositionParams{Step: IntegrationStep}}
}

func (p *PositionPass) Name() string { return "position" }

func (p *PositionPass) SetVelocities(tVel *StateTexture) { p.TVel = tVel }

func (p *PositionPass) Run(prev, dst *StateTexture) error {
	if p.TVel == nil {
		return fmt.Errorf("position pass tVel: %w", ErrUnboundInput)
	}
	if err := sameSize(prev, dst, p.TVel); err != nil {
		return fmt.Errorf("position pass: %w", err)
	}
	for i := 0; i < dst.Len(); i++ {
		dst.SetIndex(i, IntegratePosition(prev.AtIndex(i), p.TVel.AtIndex(i), p.Params.Step))
	}
	return nil
}

func sameSize(textures ...*StateTexture) error {
	w, h := textures[0].Width, textures[0].Height
	for _, t := range textures[1:] {
		if t.Width != w || t.Height != h {
			return ErrSizeMismatch
		}
	}
	return nil
}
