package particles

import (
	"context"
	"fmt"
	"net"

	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/snapshot"
	"github.com/gekko3d/particles/telemetry"
)

// HeadlessResult describes a finished headless run.
type HeadlessResult struct {
	Frames uint64
	Drawn  int
	Files  []string
}

// RunHeadless steps the in-memory simulation cfg.Frames times, rendering every frame
// with the CPU point renderer, and writes the final state and render under cfg.OutDir.
// metrics may be nil.
func RunHeadless(cfg Config, log Logger, metrics *telemetry.Metrics) (HeadlessResult, error) {
	var res HeadlessResult
	if err := cfg.Validate(); err != nil {
		return res, err
	}

	sim, err := core.NewReferenceSimulation(cfg.Simulation())
	if err != nil {
		return res, fmt.Errorf("reference simulation: %w", err)
	}
	renderer := core.NewPointRenderer(cfg.Width, cfg.Height)
	renderer.Spread = cfg.Spread

	driver := core.NewFrameDriver[*core.StateTexture](sim, renderer)
	if metrics != nil {
		driver.OnFrame = metrics.Observe
	}
	log.Infof("headless run: %dx%d particles, %d frames, seed %d", cfg.NumParticles, cfg.NumParticles, cfg.Frames, cfg.Seed)
	if err := driver.RunFrames(cfg.Frames); err != nil {
		return res, fmt.Errorf("frame %d: %w", sim.Frame(), err)
	}
	if log.DebugEnabled() {
		log.Debugf("profiler:\n%s", driver.Profiler.Stats())
	}
	res.Frames = sim.Frame()
	res.Drawn = renderer.Drawn()

	w := snapshot.NewWriter(cfg.OutDir)
	files, err := w.WriteState(sim.Frame(), sim.Velocity(), sim.Output(), cfg.LimitToBounce, cfg.SnapshotScale)
	res.Files = files
	if err != nil {
		return res, err
	}
	path, err := w.WritePNG(fmt.Sprintf("frame-%05d-render.png", sim.Frame()), renderer.Image())
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, path)
	for _, f := range res.Files {
		log.Infof("wrote %s", f)
	}
	return res, nil
}

// ServeHeadless runs RunHeadless with metrics exported on ln, then keeps serving the
// final counters until ctx is cancelled so the run can still be scraped.
func ServeHeadless(ctx context.Context, cfg Config, log Logger, ln net.Listener) (HeadlessResult, error) {
	metrics := telemetry.NewMetrics(cfg.NumParticles)
	serveErr := make(chan error, 1)
	go func() { serveErr <- metrics.ServeListener(ctx, ln) }()

	res, err := RunHeadless(cfg, log, metrics)
	if err != nil {
		return res, err
	}

	log.Infof("metrics on %s, Ctrl-C to exit", ln.Addr())
	if err := <-serveErr; err != nil {
		return res, fmt.Errorf("metrics server: %w", err)
	}
	return res, nil
}
