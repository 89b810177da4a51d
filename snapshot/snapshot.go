package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/gekko3d/particles/core"
)

// StateImage maps the xyz channels of tex to RGB. Values in [-span, span] cover the
// full byte range; anything outside is clamped. The result is scaled up by scale with
// nearest-neighbour filtering so single texels stay visible.
func StateImage(tex *core.StateTexture, span float32, scale int) *image.RGBA {
	if span <= 0 {
		span = 1
	}
	if scale < 1 {
		scale = 1
	}
	src := image.NewRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	for y := 0; y < tex.Height; y++ {
		for x := 0; x < tex.Width; x++ {
			v := tex.At(x, y)
			src.SetRGBA(x, y, color.RGBA{
				R: toByte(v.X(), span),
				G: toByte(v.Y(), span),
				B: toByte(v.Z(), span),
				A: 255,
			})
		}
	}
	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, tex.Width*scale, tex.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func toByte(v, span float32) uint8 {
	f := (v/span*0.5 + 0.5) * 255
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}

// Writer places snapshots of one run under Dir/<RunID>/.
type Writer struct {
	Dir   string
	RunID string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, RunID: uuid.NewString()}
}

func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, w.RunID, name)
}

// WritePNG encodes img to Path(name), creating the run directory if needed.
func (w *Writer) WritePNG(name string, img image.Image) (string, error) {
	path := w.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("snapshot create: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("snapshot encode %s: %w", name, err)
	}
	return path, f.Close()
}

// WriteState writes the position and velocity textures of frame as two images.
func (w *Writer) WriteState(frame uint64, vel, pos *core.StateTexture, limit float32, scale int) ([]string, error) {
	var paths []string
	for _, s := range []struct {
		kind string
		tex  *core.StateTexture
		span float32
	}{
		{"positions", pos, limit * 0.5},
		{"velocities", vel, core.VelocityRangeX},
	} {
		p, err := w.WritePNG(fmt.Sprintf("frame-%05d-%s.png", frame, s.kind), StateImage(s.tex, s.span, scale))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
