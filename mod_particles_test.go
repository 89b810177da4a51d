package particles

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/snapshot"
)

// fakeBackend drives the in-memory simulation through the same interface as the GPU app.
type fakeBackend struct {
	sim      *core.ReferenceSimulation
	driver   *core.FrameDriver[*core.StateTexture]
	render   *core.PointRenderer
	seeds    []int64
	debug    bool
	released bool
	tickErr  error
	dts      []time.Duration
}

func newFakeBackend(t *testing.T) *fakeBackend {
	cfg := core.SimulationConfig{NumParticles: 4, LimitToBounce: 512, Seed: 1, VelocityInit: core.VelocityInitX}
	sim, err := core.NewReferenceSimulation(cfg)
	require.NoError(t, err)
	r := core.NewPointRenderer(DefaultWindowWidth, DefaultWindowHeight)
	return &fakeBackend{sim: sim, render: r, driver: core.NewFrameDriver[*core.StateTexture](sim, r)}
}

func (f *fakeBackend) Tick(dt time.Duration) error {
	f.dts = append(f.dts, dt)
	if f.tickErr != nil {
		return f.tickErr
	}
	return f.driver.Tick()
}
func (f *fakeBackend) Resize(w, h int)       { f.driver.Resize(w, h) }
func (f *fakeBackend) SetPaused(paused bool) { f.driver.SetPaused(paused) }
func (f *fakeBackend) SetDebug(enabled bool) { f.debug = enabled }
func (f *fakeBackend) Frame() uint64         { return f.sim.Frame() }
func (f *fakeBackend) Release()              { f.released = true }
func (f *fakeBackend) Reseed(seed int64) error {
	f.seeds = append(f.seeds, seed)
	cfg := core.SimulationConfig{NumParticles: 4, LimitToBounce: 512, Seed: seed, VelocityInit: core.VelocityInitX}
	vel, pos, err := core.SeedData(cfg, core.NewRand(seed))
	if err != nil {
		return err
	}
	return f.sim.Seed(vel, pos)
}
func (f *fakeBackend) ReadState() (vel, pos *core.StateTexture, err error) {
	return f.sim.Velocity().Clone(), f.sim.Output().Clone(), nil
}

type particlesHarness struct {
	app     *App
	input   *Input
	window  *WindowState
	state   *ParticlesState
	backend *fakeBackend
}

func newParticlesHarness(t *testing.T) *particlesHarness {
	h := &particlesHarness{
		input:   &Input{},
		window:  &WindowState{WindowWidth: DefaultWindowWidth, WindowHeight: DefaultWindowHeight},
		backend: newFakeBackend(t),
	}
	h.state = &ParticlesState{
		Backend:   h.backend,
		Seed:      1,
		Limit:     512,
		Snapshots: snapshot.NewWriter(t.TempDir()),
		Scale:     1,
	}
	h.app = NewAppBuilder().UseStates(StateRunning, StateExiting).UseModule(TimeModule{}).Build()
	h.app.addResources(h.input, h.window, h.state)
	installParticleSystems(h.app)
	h.app.start()
	return h
}

func (h *particlesHarness) press(key int) {
	h.input.update(key, true)
}

func (h *particlesHarness) frame() bool {
	done := h.app.frame()
	for k := 0; k < keyCount; k++ {
		h.input.update(k, false)
	}
	return done
}

func TestParticles_RunsEveryFrame(t *testing.T) {
	h := newParticlesHarness(t)
	for i := 0; i < 3; i++ {
		assert.False(t, h.frame())
	}
	assert.Equal(t, uint64(3), h.backend.Frame())
	assert.Equal(t, StateRunning, h.app.State())
}

func TestParticles_TickUsesFrameClock(t *testing.T) {
	h := newParticlesHarness(t)
	res, ok := h.app.resource(typeOfTime)
	require.True(t, ok)
	clock := res.(*Time)

	for i := 0; i < 3; i++ {
		time.Sleep(time.Millisecond)
		h.frame()
		require.Len(t, h.backend.dts, i+1)
		assert.Equal(t, clock.Dt, h.backend.dts[i], "frame %d", i)
		assert.Positive(t, h.backend.dts[i])
	}
	assert.Equal(t, uint64(3), clock.Frame)
}

func TestParticles_SpaceTogglesPause(t *testing.T) {
	h := newParticlesHarness(t)
	h.frame()

	h.press(KeySpace)
	h.frame()
	assert.Equal(t, StatePaused, h.app.State())
	assert.True(t, h.backend.driver.Paused())
	frame := h.backend.Frame()

	h.frame()
	h.frame()
	assert.Equal(t, frame, h.backend.Frame(), "paused frames do not step")
	assert.NotZero(t, h.backend.render.Drawn(), "paused frames still render")

	h.press(KeySpace)
	h.frame()
	assert.Equal(t, StateRunning, h.app.State())
	assert.False(t, h.backend.driver.Paused())
	h.frame()
	assert.Equal(t, frame+1, h.backend.Frame())
}

func TestParticles_ReseedAndDebug(t *testing.T) {
	h := newParticlesHarness(t)
	h.press(KeyR)
	h.press(KeyF2)
	h.frame()
	h.press(KeyR)
	h.frame()

	assert.Equal(t, []int64{2, 3}, h.backend.seeds)
	assert.Equal(t, int64(3), h.state.Seed)
	assert.True(t, h.backend.debug)
}

func TestParticles_Resize(t *testing.T) {
	h := newParticlesHarness(t)
	h.window.recordResize(1920, 1080)
	h.frame()

	w, hh := h.backend.render.Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, hh)
	assert.Equal(t, 4, h.backend.sim.Output().Width, "grid unaffected by window size")

	_, _, pending := h.window.TakeResize()
	assert.False(t, pending)
}

func TestParticles_Snapshot(t *testing.T) {
	h := newParticlesHarness(t)
	h.frame()
	h.press(KeyP)
	h.frame()

	_, err := os.Stat(h.state.Snapshots.Path("frame-00001-positions.png"))
	assert.NoError(t, err)
}

func TestParticles_FrameErrorsAreCounted(t *testing.T) {
	h := newParticlesHarness(t)
	h.backend.tickErr = errors.New("device lost")
	h.frame()
	h.frame()
	assert.Equal(t, 2, h.state.FrameErrors)
	assert.Equal(t, StateRunning, h.app.State())
}

func TestParticles_EscapeExitsAndReleases(t *testing.T) {
	h := newParticlesHarness(t)
	var seen []core.FrameStats
	h.state.Observe(func(s core.FrameStats) { seen = append(seen, s) })
	h.backend.driver.OnFrame = h.state.notify

	h.frame()
	h.press(KeyEscape)
	assert.True(t, h.frame())
	assert.Equal(t, StateExiting, h.app.State())
	assert.True(t, h.backend.released)
	assert.Len(t, seen, 2)
}
