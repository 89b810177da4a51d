package app

import (
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/gpu"
)

// Logger is the subset of the engine logger the renderer reports through.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// App owns the WebGPU device, the swapchain surface and the GPU simulation.
// It implements core.Renderer[*gpu.Target] so a core.FrameDriver can drive it.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	VelComposer *gpu.Composer
	PosComposer *gpu.Composer
	VelPass     *gpu.VelocityPass
	PosPass     *gpu.PositionPass
	Particles   *gpu.ParticleRenderPass

	Sim    *core.Simulation[*gpu.Target]
	Driver *core.FrameDriver[*gpu.Target]
	Camera *core.Camera
	Log    Logger

	SimConfig  core.SimulationConfig
	Spread     float32
	ClearColor wgpu.Color
	DebugMode  bool

	FPS *core.FPSCounter

	// length of the frame being rendered, fed by Tick
	frameDt time.Duration
}

func NewApp(window *glfw.Window, cfg core.SimulationConfig) *App {
	return &App{
		Window:     window,
		Camera:     core.NewCamera(),
		Log:        nopLogger{},
		SimConfig:  cfg,
		Spread:     core.DefaultSpread,
		ClearColor: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		FPS:        core.NewFPSCounter(),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)
	a.Surface = a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Particles Device",
	})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := a.Surface.GetCapabilities(adapter)
	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // the display refresh paces the frame driver
		AlphaMode:   caps.AlphaModes[0],
	}
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.Camera.SetAspect(width, height)

	if err := a.initSimulation(); err != nil {
		return err
	}

	a.Particles, err = gpu.NewParticleRenderPass(a.Device, a.Queue, a.Config.Format, a.SimConfig.NumParticles)
	if err != nil {
		return fmt.Errorf("particle pass: %w", err)
	}
	a.Particles.Uniforms.Spread = a.Spread

	a.Driver = core.NewFrameDriver[*gpu.Target](a.Sim, a)
	a.Log.Infof("GPU simulation ready: %dx%d particles, bounce limit %.1f", a.SimConfig.NumParticles, a.SimConfig.NumParticles, a.VelPass.Params.LimitToBounce)
	return nil
}

func (a *App) initSimulation() error {
	var err error
	a.VelComposer, err = gpu.NewComposer(a.Device, a.Queue, "velocity", core.VelocityTargetSettings())
	if err != nil {
		return err
	}
	a.PosComposer, err = gpu.NewComposer(a.Device, a.Queue, "position", core.PositionTargetSettings())
	if err != nil {
		return err
	}

	a.VelPass, err = gpu.NewVelocityPass(a.Device, a.Queue, gpu.TextureFormat(a.VelComposer.Settings), a.SimConfig.LimitToBounce*0.5)
	if err != nil {
		return err
	}
	a.PosPass, err = gpu.NewPositionPass(a.Device, a.Queue, gpu.TextureFormat(a.PosComposer.Settings))
	if err != nil {
		return err
	}

	a.Sim, err = core.NewSimulation[*gpu.Target](a.SimConfig.NumParticles, a.VelComposer, a.PosComposer, a.VelPass, a.PosPass)
	if err != nil {
		return err
	}
	for _, c := range []*gpu.Composer{a.VelComposer, a.PosComposer} {
		if err := c.Err(); err != nil {
			return fmt.Errorf("allocate %s targets: %w", c.Label, err)
		}
	}
	return a.Reseed(a.SimConfig.Seed)
}

// Reseed regenerates the initial state from seed and uploads it.
func (a *App) Reseed(seed int64) error {
	a.SimConfig.Seed = seed
	vel, pos, err := core.SeedData(a.SimConfig, core.NewRand(seed))
	if err != nil {
		return err
	}
	if err := a.Sim.Seed(vel, pos); err != nil {
		return err
	}
	a.Log.Debugf("simulation seeded with %d", seed)
	return nil
}

// SetSize reconfigures the swapchain and camera projection. The simulation targets are
// not touched here; core.FrameDriver.Resize re-asserts them.
func (a *App) SetSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.Camera.SetAspect(w, h)
	a.Log.Debugf("surface resized to %dx%d", w, h)
}

func (a *App) SetParticleTexture(tex *gpu.Target) {
	a.Particles.SetSource(tex)
}

// Render draws the point cloud into the next swapchain image and presents it.
func (a *App) Render() error {
	a.Particles.UpdateCamera(a.Camera)

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: a.ClearColor,
		}},
	})
	drawErr := a.Particles.Draw(rPass)
	err = rPass.End()
	rPass.Release()
	if drawErr != nil {
		return drawErr
	}
	if err != nil {
		return fmt.Errorf("render pass end: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.updateFPS()
	return nil
}

func (a *App) updateFPS() {
	if a.FPS.Add(a.frameDt) && a.DebugMode {
		a.Log.Debugf("FPS %.1f\n%s", a.FPS.FPS, a.Driver.Profiler.Stats())
	}
}

// Tick runs one frame; dt is the wall time since the previous frame.
func (a *App) Tick(dt time.Duration) error {
	a.frameDt = dt
	return a.Driver.Tick()
}

func (a *App) Resize(w, h int) { a.Driver.Resize(w, h) }

func (a *App) SetPaused(paused bool) { a.Driver.SetPaused(paused) }

func (a *App) SetDebug(enabled bool) { a.DebugMode = enabled }

func (a *App) Frame() uint64 { return a.Sim.Frame() }

// ReadState copies the current velocity and position textures back to the CPU.
func (a *App) ReadState() (vel, pos *core.StateTexture, err error) {
	n := a.SimConfig.NumParticles
	vel, pos = core.NewStateTexture(n, n), core.NewStateTexture(n, n)
	if err := a.VelComposer.Readback(vel); err != nil {
		return nil, nil, fmt.Errorf("read velocity: %w", err)
	}
	if err := a.PosComposer.Readback(pos); err != nil {
		return nil, nil, fmt.Errorf("read position: %w", err)
	}
	return vel, pos, nil
}

func (a *App) Release() {
	if a.Particles != nil {
		a.Particles.Release()
	}
	if a.VelPass != nil {
		a.VelPass.Release()
	}
	if a.PosPass != nil {
		a.PosPass.Release()
	}
	if a.VelComposer != nil {
		a.VelComposer.Release()
	}
	if a.PosComposer != nil {
		a.PosComposer.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
