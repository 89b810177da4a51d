package particles

import (
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the shared GLFW window. The framebuffer size callback records
// resizes; consumers pick them up with TakeResize.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	resized bool
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // WebGPU owns the surface, no GL context
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	s := &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		s.recordResize(w, h)
	})
	return s
}

func (s *WindowState) recordResize(w, h int) {
	if w == s.WindowWidth && h == s.WindowHeight {
		return
	}
	s.WindowWidth, s.WindowHeight = w, h
	s.resized = true
}

// TakeResize returns the latest framebuffer size once per change.
func (s *WindowState) TakeResize() (int, int, bool) {
	if !s.resized {
		return 0, 0, false
	}
	s.resized = false
	return s.WindowWidth, s.WindowHeight, true
}

func (s *WindowState) ShouldClose() bool {
	return s.windowGlfw != nil && s.windowGlfw.ShouldClose()
}

func (s *WindowState) Destroy() {
	if s.windowGlfw == nil {
		return
	}
	s.windowGlfw.Destroy()
	s.windowGlfw = nil
	glfw.Terminate()
}

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is created
// and made available as a resource for the renderer and input modules.
// Install is idempotent: if a WindowState resource already exists, it is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewPlatformWindow creates a module that provides a shared WindowState resource.
// If Width/Height are zero, the default 800x600 viewport is used.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = DefaultWindowWidth
	}
	if height <= 0 {
		height = DefaultWindowHeight
	}
	if title == "" {
		title = "Particles"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

var typeOfWindowState = reflect.TypeOf(WindowState{})

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := app.resource(typeOfWindowState); ok {
		return
	}
	cmd.AddResources(createWindowState(m.Width, m.Height, m.Title))
}
