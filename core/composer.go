package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Composer drives off-screen passes over a ping-pong pair of render targets.
type Composer[T any] interface {
	// SetSize allocates the target pair at w×h. Re-applying the current size keeps the contents.
	SetSize(w, h int)
	Size() (int, int)
	// Reset clears both targets.
	Reset()
	// SetSource uploads data into the current output target.
	SetSource(data *StateTexture) error
	// Pass renders the current output through p into the back target and swaps.
	Pass(p Pass[T]) error
	Output() T
}

// TextureComposer is the in-memory Composer used by the reference backend.
type TextureComposer struct {
	ID       uuid.UUID
	Settings TargetSettings

	targets *PingPong[*StateTexture]
	width   int
	height  int
}

func NewTextureComposer(settings TargetSettings) *TextureComposer {
	c := &TextureComposer{ID: uuid.New(), Settings: settings}
	c.allocate(0, 0)
	return c
}

func (c *TextureComposer) allocate(w, h int) {
	c.width, c.height = w, h
	c.targets = NewPingPong(NewStateTexture(w, h), NewStateTexture(w, h))
}

func (c *TextureComposer) SetSize(w, h int) {
	if w == c.width && h == c.height {
		return
	}
	c.allocate(w, h)
}

func (c *TextureComposer) Size() (int, int) {
	return c.width, c.height
}

func (c *TextureComposer) Reset() {
	c.targets.Front().Clear()
	c.targets.Back().Clear()
}

func (c *TextureComposer) SetSource(data *StateTexture) error {
	if err := c.targets.Front().CopyFrom(data); err != nil {
		return fmt.Errorf("composer %s set source: %w", c.ID, err)
	}
	return nil
}

func (c *TextureComposer) Pass(p Pass[*StateTexture]) error {
	if err := p.Run(c.targets.Front(), c.targets.Back()); err != nil {
		return err
	}
	c.targets.Swap()
	return nil
}

func (c *TextureComposer) Output() *StateTexture {
	return c.targets.Front()
}

// Swaps reports how many passes have completed on this composer.
func (c *TextureComposer) Swaps() int {
	return c.targets.Swaps()
}
