package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gekko3d/particles/core"
)

// Metrics exports per-frame simulation statistics.
type Metrics struct {
	Registry *prometheus.Registry

	Frames         prometheus.Counter
	PausedFrames   prometheus.Counter
	SimulationTime prometheus.Histogram
	RenderTime     prometheus.Histogram
	Particles      prometheus.Gauge
	Paused         prometheus.Gauge
}

var frameBuckets = []float64{.0001, .0005, .001, .002, .004, .008, .016, .033, .066}

// NewMetrics creates the collectors on a private registry.
func NewMetrics(numParticles int) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "particles_frames_total",
			Help: "Frames rendered",
		}),
		PausedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "particles_paused_frames_total",
			Help: "Frames rendered without a simulation step",
		}),
		SimulationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "particles_simulation_seconds",
			Help:    "Time spent in the velocity and position passes",
			Buckets: frameBuckets,
		}),
		RenderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "particles_render_seconds",
			Help:    "Time spent drawing the point cloud",
			Buckets: frameBuckets,
		}),
		Particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "particles_count",
			Help: "Number of simulated particles",
		}),
		Paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "particles_paused",
			Help: "1 while the simulation is paused",
		}),
	}
	m.Registry.MustRegister(m.Frames, m.PausedFrames, m.SimulationTime, m.RenderTime, m.Particles, m.Paused)
	m.Particles.Set(float64(numParticles * numParticles))
	return m
}

// Observe records one completed frame. It has the core.FrameDriver OnFrame signature.
func (m *Metrics) Observe(stats core.FrameStats) {
	m.Frames.Inc()
	if stats.Paused {
		m.PausedFrames.Inc()
		m.Paused.Set(1)
	} else {
		m.Paused.Set(0)
		m.SimulationTime.Observe(stats.Simulate.Seconds())
	}
	m.RenderTime.Observe(stats.Render.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.ServeListener(ctx, ln)
}

// ServeListener exposes /metrics on ln until ctx is cancelled. ln is closed on return.
func (m *Metrics) ServeListener(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
