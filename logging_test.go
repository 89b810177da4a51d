package particles

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLogger("sim", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("frame %d", 2)
	l.Warnf("slow")
	l.Errorf("broken: %v", "pass")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[sim] INFO: frame 2")
	assert.Contains(t, errOut.String(), "[sim] WARN: slow")
	assert.Contains(t, errOut.String(), "[sim] ERROR: broken: pass")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible")
	assert.Contains(t, out.String(), "[sim] DEBUG: visible")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := newLogger("", true, &out, &out)
	l.Infof("hello")
	assert.Contains(t, out.String(), "INFO: hello")
	assert.NotContains(t, out.String(), "[")
}

func TestApp_Logger(t *testing.T) {
	var nilApp *App
	require.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().Build()
	_, isNop := app.Logger().(*nopLogger)
	assert.True(t, isNop)

	app = NewAppBuilder().UseModule(LoggingModule{Prefix: "test", Debug: true}).Build()
	l, ok := app.Logger().(*DefaultLogger)
	require.True(t, ok)
	assert.True(t, l.DebugEnabled())
	assert.Same(t, l, app.Commands().Logger())
}
