package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking at the origin down -Z.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Fov      float32 // degrees
	Aspect   float32
	Near     float32
	Far      float32

	projection mgl32.Mat4
}

func NewCamera() *Camera {
	c := &Camera{
		Position: mgl32.Vec3{0, 0, 700},
		Target:   mgl32.Vec3{0, 0, 0},
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      45,
		Aspect:   1,
		Near:     1,
		Far:      10000,
	}
	c.updateProjection()
	return c
}

// SetAspect recomputes the projection for a w×h viewport. Degenerate sizes are ignored.
func (c *Camera) SetAspect(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.Aspect = float32(w) / float32(h)
	c.updateProjection()
}

func (c *Camera) updateProjection() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.View())
}
