package particles

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeySpace int = iota
	KeyR
	KeyP
	KeyEscape
	KeyF2
	keyCount
)

type InputModule struct{}

type Input struct {
	Pressed     [keyCount]bool
	JustPressed [keyCount]bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.update(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
}

// update applies one polled key level; JustPressed is set on the press edge only.
func (input *Input) update(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.Pressed[key] = down
}

var keyToGlfw = map[int]glfw.Key{
	KeySpace:  glfw.KeySpace,
	KeyR:      glfw.KeyR,
	KeyP:      glfw.KeyP,
	KeyEscape: glfw.KeyEscape,
	KeyF2:     glfw.KeyF2,
}
