package core

import "time"

// FPSCounter averages frame times over a fixed window.
type FPSCounter struct {
	Window time.Duration
	FPS    float64

	frames  int
	elapsed time.Duration
}

func NewFPSCounter() *FPSCounter {
	return &FPSCounter{Window: time.Second}
}

// Add accounts one frame of length dt. It reports true when a window closed
// and FPS was updated.
func (c *FPSCounter) Add(dt time.Duration) bool {
	if dt <= 0 {
		return false
	}
	c.frames++
	c.elapsed += dt
	if c.elapsed < c.Window {
		return false
	}
	c.FPS = float64(c.frames) / c.elapsed.Seconds()
	c.frames = 0
	c.elapsed = 0
	return true
}
