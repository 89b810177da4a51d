package core

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSpread is the world-space width the particle grid is laid out over.
const DefaultSpread float32 = 256

// ParticleWorldPosition places particle i: its simulated position offset by its grid UV.
// Matches vs_main in shaders/particles.wgsl.
func ParticleWorldPosition(pos mgl32.Vec3, i, n int, spread float32) mgl32.Vec3 {
	u, v := GridUV(i, n)
	return mgl32.Vec3{
		pos[0] + (u-0.5)*spread,
		pos[1] + (v-0.5)*spread,
		pos[2],
	}
}

// PointRenderer rasterizes the particle cloud on the CPU into an RGBA image.
// It is the headless counterpart of the GPU particle pass.
type PointRenderer struct {
	Camera *Camera
	Spread float32
	Color  color.RGBA

	width   int
	height  int
	image   *image.RGBA
	texture *StateTexture
	drawn   int
}

func NewPointRenderer(width, height int) *PointRenderer {
	r := &PointRenderer{
		Camera: NewCamera(),
		Spread: DefaultSpread,
		Color:  color.RGBA{R: 64, G: 64, B: 64, A: 255},
	}
	r.SetSize(width, height)
	return r
}

func (r *PointRenderer) SetSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	r.Camera.SetAspect(w, h)
	if w == r.width && h == r.height {
		return
	}
	r.width, r.height = w, h
	r.image = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (r *PointRenderer) Size() (int, int) {
	return r.width, r.height
}

func (r *PointRenderer) SetParticleTexture(tex *StateTexture) {
	r.texture = tex
}

// Render clears the image and additively plots every particle that projects on screen.
func (r *PointRenderer) Render() error {
	r.drawn = 0
	if r.image == nil {
		return nil
	}
	for i := range r.image.Pix {
		r.image.Pix[i] = 0
	}
	for i := 3; i < len(r.image.Pix); i += 4 {
		r.image.Pix[i] = 255
	}
	if r.texture == nil {
		return nil
	}

	vp := r.Camera.ViewProjection()
	n := r.texture.Width
	for i := 0; i < r.texture.Len(); i++ {
		world := ParticleWorldPosition(r.texture.AtIndex(i), i, n, r.Spread)
		x, y, ok := r.project(vp, world)
		if !ok {
			continue
		}
		r.plot(x, y)
		r.drawn++
	}
	return nil
}

func (r *PointRenderer) project(vp mgl32.Mat4, p mgl32.Vec3) (int, int, bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.X() < -1 || ndc.X() > 1 || ndc.Y() < -1 || ndc.Y() > 1 {
		return 0, 0, false
	}
	x := int((ndc.X()*0.5 + 0.5) * float32(r.width))
	y := int((1 - (ndc.Y()*0.5 + 0.5)) * float32(r.height))
	if x >= r.width {
		x = r.width - 1
	}
	if y >= r.height {
		y = r.height - 1
	}
	return x, y, true
}

func (r *PointRenderer) plot(x, y int) {
	i := r.image.PixOffset(x, y)
	r.image.Pix[i] = addSat(r.image.Pix[i], r.Color.R)
	r.image.Pix[i+1] = addSat(r.image.Pix[i+1], r.Color.G)
	r.image.Pix[i+2] = addSat(r.image.Pix[i+2], r.Color.B)
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// Image is the last rendered frame.
func (r *PointRenderer) Image() *image.RGBA {
	return r.image
}

// Drawn is the number of particles plotted by the last Render.
func (r *PointRenderer) Drawn() int {
	return r.drawn
}
