package core

import (
	"context"
	"time"
)

// Renderer is the display side of a frame: it owns the backbuffer and camera and
// draws the particle cloud from the bound position texture.
type Renderer[T any] interface {
	SetSize(w, h int)
	SetParticleTexture(tex T)
	Render() error
}

// FrameStats describes one completed Tick.
type FrameStats struct {
	Frame    uint64
	Paused   bool
	Simulate time.Duration
	Render   time.Duration
}

// FrameDriver advances the pipeline once per display refresh:
// velocity pass, position pass, render.
type FrameDriver[T any] struct {
	Sim      *Simulation[T]
	Renderer Renderer[T]
	Profiler *Profiler
	// OnFrame, if set, is called after every successful Tick.
	OnFrame func(FrameStats)

	paused bool
}

func NewFrameDriver[T any](sim *Simulation[T], renderer Renderer[T]) *FrameDriver[T] {
	return &FrameDriver[T]{
		Sim:      sim,
		Renderer: renderer,
		Profiler: NewProfiler(),
	}
}

func (d *FrameDriver[T]) SetPaused(paused bool) { d.paused = paused }

func (d *FrameDriver[T]) Paused() bool { return d.paused }

// Tick runs one frame. While paused the last position texture is still rendered.
func (d *FrameDriver[T]) Tick() error {
	stats := FrameStats{Paused: d.paused}

	start := time.Now()
	d.Profiler.BeginScope("Simulate")
	if !d.paused {
		if err := d.Sim.Step(); err != nil {
			d.Profiler.EndScope("Simulate")
			return err
		}
	}
	d.Profiler.EndScope("Simulate")
	stats.Simulate = time.Since(start)

	start = time.Now()
	d.Profiler.BeginScope("Render")
	d.Renderer.SetParticleTexture(d.Sim.Output())
	err := d.Renderer.Render()
	d.Profiler.EndScope("Render")
	if err != nil {
		return err
	}
	stats.Render = time.Since(start)
	stats.Frame = d.Sim.Frame()
	d.Profiler.SetCount("Frame", int(stats.Frame))

	if d.OnFrame != nil {
		d.OnFrame(stats)
	}
	return nil
}

// Resize updates the output viewport and re-asserts the simulation grid on both composers.
// The grid itself never changes size.
func (d *FrameDriver[T]) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	d.Renderer.SetSize(w, h)
	d.Sim.ResizeTargets()
}

// Run ticks once per value received on refresh until ctx is done or a frame fails.
func (d *FrameDriver[T]) Run(ctx context.Context, refresh <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-refresh:
			if !ok {
				return nil
			}
			if err := d.Tick(); err != nil {
				return err
			}
		}
	}
}

// RunFrames ticks n times back to back.
func (d *FrameDriver[T]) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := d.Tick(); err != nil {
			return err
		}
	}
	return nil
}
