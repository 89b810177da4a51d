package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	*PointRenderer
	bound   []*StateTexture
	renders int
	err     error
}

func (r *recordingRenderer) SetParticleTexture(tex *StateTexture) {
	r.bound = append(r.bound, tex)
	r.PointRenderer.SetParticleTexture(tex)
}

func (r *recordingRenderer) Render() error {
	r.renders++
	if r.err != nil {
		return r.err
	}
	return r.PointRenderer.Render()
}

func TestFrameDriver_TickBindsLatestPosition(t *testing.T) {
	sim, _, _ := newTestSimulation(t, 2, 10)
	vel := NewStateTexture(2, 2)
	vel.Set(0, 0, mgl32.Vec3{1, 0, 0})
	require.NoError(t, sim.Seed(vel, NewStateTexture(2, 2)))

	r := &recordingRenderer{PointRenderer: NewPointRenderer(64, 64)}
	d := NewFrameDriver[*StateTexture](sim, r)

	var stats []FrameStats
	d.OnFrame = func(s FrameStats) { stats = append(stats, s) }

	require.NoError(t, d.RunFrames(3))

	require.Len(t, r.bound, 3)
	assert.Same(t, sim.Output(), r.bound[2])
	assert.Equal(t, mgl32.Vec3{1.5, 0, 0}, r.bound[2].At(0, 0))
	assert.Equal(t, 3, r.renders)
	require.Len(t, stats, 3)
	assert.Equal(t, uint64(3), stats[2].Frame)
	assert.Equal(t, 3, d.Profiler.Counts["Frame"])
	assert.Contains(t, d.Profiler.Stats(), "Simulate")
}

func TestFrameDriver_PausedStillRenders(t *testing.T) {
	sim, _, _ := newTestSimulation(t, 2, 10)
	vel := NewStateTexture(2, 2)
	vel.Set(0, 0, mgl32.Vec3{1, 0, 0})
	require.NoError(t, sim.Seed(vel, NewStateTexture(2, 2)))

	r := &recordingRenderer{PointRenderer: NewPointRenderer(64, 64)}
	d := NewFrameDriver[*StateTexture](sim, r)

	require.NoError(t, d.Tick())
	d.SetPaused(true)
	assert.True(t, d.Paused())
	require.NoError(t, d.RunFrames(4))

	assert.Equal(t, uint64(1), sim.Frame())
	assert.Equal(t, 5, r.renders)
	assert.Equal(t, mgl32.Vec3{0.5, 0, 0}, r.bound[4].At(0, 0))
}

func TestFrameDriver_RenderErrorStopsRun(t *testing.T) {
	sim, err := NewReferenceSimulation(SimulationConfig{NumParticles: 2, LimitToBounce: 20, Seed: 1})
	require.NoError(t, err)

	boom := errors.New("device lost")
	r := &recordingRenderer{PointRenderer: NewPointRenderer(8, 8), err: boom}
	d := NewFrameDriver[*StateTexture](sim, r)

	assert.ErrorIs(t, d.RunFrames(10), boom)
	assert.Equal(t, 1, r.renders)
}

func TestFrameDriver_ResizeKeepsGrid(t *testing.T) {
	sim, velC, posC := newTestSimulation(t, 2, 10)
	r := NewPointRenderer(800, 600)
	d := NewFrameDriver[*StateTexture](sim, r)

	d.Resize(800, 600)
	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.InDelta(t, 800.0/600.0, r.Camera.Aspect, 1e-6)
	projBefore := r.Camera.Projection()

	d.Resize(1920, 1080)
	w, h = r.Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
	assert.Equal(t, 1920, r.Image().Bounds().Dx())
	assert.InDelta(t, 16.0/9.0, r.Camera.Aspect, 1e-6)
	assert.NotEqual(t, projBefore, r.Camera.Projection())

	for _, c := range []*TextureComposer{velC, posC} {
		cw, ch := c.Size()
		assert.Equal(t, 2, cw)
		assert.Equal(t, 2, ch)
	}
}

func TestFrameDriver_ResizeIdempotent(t *testing.T) {
	sim, velC, posC := newTestSimulation(t, 4, 10)
	vel := NewStateTexture(4, 4)
	vel.Set(2, 1, mgl32.Vec3{1, 0, 0})
	require.NoError(t, sim.Seed(vel, NewStateTexture(4, 4)))
	require.NoError(t, sim.Step())

	posBefore := sim.Output()
	snapshot := posBefore.Clone()

	d := NewFrameDriver[*StateTexture](sim, NewPointRenderer(640, 480))
	for i := 0; i < 5; i++ {
		d.Resize(1024, 768)
	}

	for _, c := range []*TextureComposer{velC, posC} {
		cw, ch := c.Size()
		assert.Equal(t, 4, cw)
		assert.Equal(t, 4, ch)
	}
	assert.Same(t, posBefore, sim.Output(), "targets are not reallocated")
	assert.Equal(t, snapshot.Data, sim.Output().Data)
}

func TestFrameDriver_ResizeIgnoresMinimized(t *testing.T) {
	sim, _, _ := newTestSimulation(t, 2, 10)
	r := NewPointRenderer(320, 200)
	d := NewFrameDriver[*StateTexture](sim, r)

	d.Resize(0, 0)
	w, h := r.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
}

func TestFrameDriver_RunUntilRefreshCloses(t *testing.T) {
	sim, err := NewReferenceSimulation(SimulationConfig{NumParticles: 2, LimitToBounce: 20, Seed: 1})
	require.NoError(t, err)
	d := NewFrameDriver[*StateTexture](sim, NewPointRenderer(16, 16))

	refresh := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		refresh <- time.Now()
	}
	close(refresh)

	require.NoError(t, d.Run(context.Background(), refresh))
	assert.Equal(t, uint64(3), sim.Frame())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Run(ctx, make(chan time.Time)), context.Canceled)
}
