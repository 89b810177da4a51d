package particles

import (
	"context"

	"github.com/gekko3d/particles/telemetry"
)

// MetricsModule exports frame statistics over HTTP. Install it after ParticlesModule.
type MetricsModule struct {
	Addr         string
	NumParticles int
}

type MetricsState struct {
	Metrics *telemetry.Metrics
	cancel  context.CancelFunc
}

func (mod MetricsModule) Install(app *App, cmd *Commands) {
	res, ok := app.resource(typeOfParticlesState)
	if !ok {
		panic("MetricsModule requires ParticlesModule to be installed first")
	}
	state := res.(*ParticlesState)

	m := telemetry.NewMetrics(mod.NumParticles)
	state.Observe(m.Observe)

	ctx, cancel := context.WithCancel(context.Background())
	if mod.Addr != "" {
		log := cmd.Logger()
		go func() {
			log.Infof("metrics listening on %s", mod.Addr)
			if err := m.Serve(ctx, mod.Addr); err != nil {
				log.Warnf("Metrics server exited: %v", err)
			}
		}()
	}
	cmd.AddResources(&MetricsState{Metrics: m, cancel: cancel})

	app.UseSystem(
		System(metricsShutdownSystem).
			InStage(Finale).
			InState(OnExit(StateExiting)),
	)
}

func metricsShutdownSystem(s *MetricsState) {
	s.cancel()
}
