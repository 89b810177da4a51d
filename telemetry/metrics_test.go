package telemetry

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/particles/core"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics(128)
	assert.Equal(t, float64(128*128), testutil.ToFloat64(m.Particles))

	m.Observe(core.FrameStats{Frame: 1, Simulate: time.Millisecond, Render: 2 * time.Millisecond})
	m.Observe(core.FrameStats{Frame: 1, Paused: true, Render: time.Millisecond})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Frames))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PausedFrames))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Paused))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SimulationTime))
}

func TestMetrics_OnFrame(t *testing.T) {
	m := NewMetrics(2)
	sim, err := core.NewReferenceSimulation(core.SimulationConfig{NumParticles: 2, LimitToBounce: 512, Seed: 3, VelocityInit: core.VelocityInitX})
	require.NoError(t, err)

	driver := core.NewFrameDriver[*core.StateTexture](sim, core.NewPointRenderer(64, 64))
	driver.OnFrame = m.Observe
	require.NoError(t, driver.RunFrames(5))

	assert.Equal(t, float64(5), testutil.ToFloat64(m.Frames))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Paused))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics(4)
	m.Observe(core.FrameStats{Frame: 1})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "particles_frames_total 1"))
	assert.True(t, strings.Contains(body, "particles_count 16"))
}

func TestMetrics_ServeListener(t *testing.T) {
	m := NewMetrics(2)
	m.Observe(core.FrameStats{Frame: 1})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "particles_frames_total 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
