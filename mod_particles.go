package particles

import (
	"reflect"
	"time"

	particles_app "github.com/gekko3d/particles/app"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/snapshot"
)

const (
	StateRunning State = iota
	StatePaused
	StateExiting
)

// ParticlesBackend is the simulation and display the module drives each frame.
type ParticlesBackend interface {
	// Tick simulates and renders one frame that lasted dt.
	Tick(dt time.Duration) error
	Resize(w, h int)
	SetPaused(paused bool)
	SetDebug(enabled bool)
	Reseed(seed int64) error
	ReadState() (vel, pos *core.StateTexture, err error)
	Frame() uint64
	Release()
}

type ParticlesModule struct {
	Config Config
}

type ParticlesState struct {
	Backend   ParticlesBackend
	Seed      int64
	Limit     float32
	Debug     bool
	Snapshots *snapshot.Writer
	Scale     int
	// FrameErrors counts ticks that failed and were skipped.
	FrameErrors int

	observers []func(core.FrameStats)
}

// Observe registers fn to be called after every rendered frame.
func (s *ParticlesState) Observe(fn func(core.FrameStats)) {
	s.observers = append(s.observers, fn)
}

func (s *ParticlesState) notify(stats core.FrameStats) {
	for _, fn := range s.observers {
		fn(stats)
	}
}

func (mod ParticlesModule) Install(app *App, cmd *Commands) {
	if !app.stateful {
		panic("ParticlesModule requires UseStates(StateRunning, StateExiting)")
	}
	ensureSingleRenderer(app, "particles-webgpu")

	ws, ok := app.resource(typeOfWindowState)
	if !ok {
		NewPlatformWindow(mod.Config.Width, mod.Config.Height, mod.Config.Title).Install(app, cmd)
		ws, _ = app.resource(typeOfWindowState)
	}
	window := ws.(*WindowState)
	if _, ok := app.resource(typeOfTime); !ok {
		TimeModule{}.Install(app, cmd)
	}

	rt := particles_app.NewApp(window.windowGlfw, mod.Config.Simulation())
	rt.Log = cmd.Logger()
	rt.Spread = mod.Config.Spread
	rt.DebugMode = mod.Config.Debug
	if err := rt.Init(); err != nil {
		panic(err)
	}

	state := &ParticlesState{
		Backend:   rt,
		Seed:      mod.Config.Seed,
		Limit:     mod.Config.LimitToBounce,
		Debug:     mod.Config.Debug,
		Snapshots: snapshot.NewWriter(mod.Config.OutDir),
		Scale:     mod.Config.SnapshotScale,
	}
	rt.Driver.OnFrame = state.notify
	cmd.AddResources(state)

	installParticleSystems(app)
}

func installParticleSystems(app *App) {
	app.UseSystem(
		System(particlesControlSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(particlesPauseSystem).
			InStage(Update).
			InState(OnEnter(StatePaused)),
	)
	app.UseSystem(
		System(particlesResumeSystem).
			InStage(Update).
			InState(OnExit(StatePaused)),
	)
	app.UseSystem(
		System(particlesResizeSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(particlesRenderSystem).
			InStage(Render).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(particlesRenderSystem).
			InStage(Render).
			InState(OnExecute(StatePaused)),
	)
	app.UseSystem(
		System(particlesReleaseSystem).
			InStage(Finale).
			InState(OnExit(StateExiting)),
	)
}

func particlesControlSystem(cmd *Commands, input *Input, window *WindowState, state *ParticlesState) {
	log := cmd.Logger()

	if input.JustPressed[KeyEscape] || window.ShouldClose() {
		cmd.ChangeState(StateExiting)
		return
	}

	if input.JustPressed[KeySpace] {
		if cmd.State() == StatePaused {
			cmd.ChangeState(StateRunning)
		} else {
			cmd.ChangeState(StatePaused)
		}
	}

	if input.JustPressed[KeyR] {
		state.Seed++
		if err := state.Backend.Reseed(state.Seed); err != nil {
			log.Errorf("reseed: %v", err)
		} else {
			log.Infof("reseeded with %d", state.Seed)
		}
	}

	if input.JustPressed[KeyF2] {
		state.Debug = !state.Debug
		state.Backend.SetDebug(state.Debug)
	}

	if input.JustPressed[KeyP] {
		vel, pos, err := state.Backend.ReadState()
		if err != nil {
			log.Errorf("snapshot readback: %v", err)
			return
		}
		paths, err := state.Snapshots.WriteState(state.Backend.Frame(), vel, pos, state.Limit, state.Scale)
		if err != nil {
			log.Errorf("snapshot: %v", err)
			return
		}
		log.Infof("snapshot written: %v", paths)
	}
}

func particlesPauseSystem(cmd *Commands, state *ParticlesState) {
	state.Backend.SetPaused(true)
	cmd.Logger().Infof("paused at frame %d", state.Backend.Frame())
}

func particlesResumeSystem(state *ParticlesState) {
	state.Backend.SetPaused(false)
}

func particlesResizeSystem(window *WindowState, state *ParticlesState) {
	if w, h, ok := window.TakeResize(); ok {
		state.Backend.Resize(w, h)
	}
}

func particlesRenderSystem(cmd *Commands, state *ParticlesState, clock *Time) {
	if err := state.Backend.Tick(clock.Dt); err != nil {
		state.FrameErrors++
		cmd.Logger().Errorf("frame %d: %v", state.Backend.Frame(), err)
	}
}

func particlesReleaseSystem(state *ParticlesState, window *WindowState) {
	state.Backend.Release()
	window.Destroy()
}

var typeOfParticlesState = reflect.TypeOf(ParticlesState{})
