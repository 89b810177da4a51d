package snapshot

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/particles/core"
)

func TestStateImage_Channels(t *testing.T) {
	tex := core.NewStateTexture(2, 1)
	tex.Set(0, 0, mgl32.Vec3{-10, 0, 10})
	tex.Set(1, 0, mgl32.Vec3{100, -100, 5})

	img := StateImage(tex, 10, 1)
	c := img.RGBAAt(0, 0)
	assert.Equal(t, uint8(0), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(255), c.B)

	c = img.RGBAAt(1, 0)
	assert.Equal(t, uint8(255), c.R, "clamped high")
	assert.Equal(t, uint8(0), c.G, "clamped low")
}

func TestStateImage_NearestScale(t *testing.T) {
	tex := core.NewStateTexture(2, 2)
	tex.Set(1, 1, mgl32.Vec3{1, 1, 1})

	img := StateImage(tex, 1, 4)
	require.Equal(t, 8, img.Bounds().Dx())
	require.Equal(t, 8, img.Bounds().Dy())

	assert.Equal(t, img.RGBAAt(4, 4), img.RGBAAt(7, 7))
	assert.Equal(t, img.RGBAAt(0, 0), img.RGBAAt(3, 3))
	assert.NotEqual(t, img.RGBAAt(0, 0), img.RGBAAt(4, 4))
}

func TestWriter_WriteState(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	require.NotEmpty(t, w.RunID)

	sim, err := core.NewReferenceSimulation(core.SimulationConfig{NumParticles: 4, LimitToBounce: 512, Seed: 7, VelocityInit: core.VelocityInitX})
	require.NoError(t, err)
	require.NoError(t, sim.Step())

	paths, err := w.WriteState(sim.Frame(), sim.Velocity(), sim.Output(), 512, 2)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, w.RunID, "frame-00001-positions.png"), paths[0])

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}
