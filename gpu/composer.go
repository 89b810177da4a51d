package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
	"github.com/google/uuid"
)

// Composer owns a ping-pong pair of GPU targets and runs feedback passes over them.
// It implements core.Composer[*Target].
type Composer struct {
	ID       uuid.UUID
	Label    string
	Settings core.TargetSettings

	device  *wgpu.Device
	queue   *wgpu.Queue
	format  wgpu.TextureFormat
	targets *core.PingPong[*Target]
	width   int
	height  int
	err     error
}

func NewComposer(device *wgpu.Device, queue *wgpu.Queue, label string, settings core.TargetSettings) (*Composer, error) {
	if settings.StencilBuffer {
		return nil, ErrStencilUnsupported
	}
	return &Composer{
		ID:       uuid.New(),
		Label:    label,
		Settings: settings,
		device:   device,
		queue:    queue,
		format:   TextureFormat(settings),
	}, nil
}

// SetSize allocates both targets at w×h. The current size is kept as is.
// Allocation failures are reported by Err and by the next Pass or SetSource.
func (c *Composer) SetSize(w, h int) {
	if w == c.width && h == c.height && c.targets != nil {
		return
	}
	if w <= 0 || h <= 0 {
		return
	}
	c.release()
	front, err := newTarget(c.device, c.Label+" A", uint32(w), uint32(h), c.format)
	if err != nil {
		c.err = err
		return
	}
	back, err := newTarget(c.device, c.Label+" B", uint32(w), uint32(h), c.format)
	if err != nil {
		front.Release()
		c.err = err
		return
	}
	c.targets = core.NewPingPong(front, back)
	c.width, c.height = w, h
	c.err = nil
}

func (c *Composer) Size() (int, int) {
	return c.width, c.height
}

// Err reports the last allocation failure, if any.
func (c *Composer) Err() error {
	return c.err
}

// Reset clears both targets to zero vectors.
func (c *Composer) Reset() {
	if c.targets == nil {
		return
	}
	zero := core.NewStateTexture(c.width, c.height)
	for _, t := range []*Target{c.targets.Front(), c.targets.Back()} {
		if err := t.upload(c.queue, zero); err != nil {
			c.err = fmt.Errorf("composer %s reset: %w", c.Label, err)
		}
	}
}

func (c *Composer) SetSource(data *core.StateTexture) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := c.targets.Front().upload(c.queue, data); err != nil {
		return fmt.Errorf("composer %s set source: %w", c.Label, err)
	}
	return nil
}

func (c *Composer) Pass(p core.Pass[*Target]) error {
	if err := c.ready(); err != nil {
		return err
	}
	if err := p.Run(c.targets.Front(), c.targets.Back()); err != nil {
		return fmt.Errorf("composer %s pass %s: %w", c.Label, p.Name(), err)
	}
	c.targets.Swap()
	return nil
}

func (c *Composer) Output() *Target {
	if c.targets == nil {
		return nil
	}
	return c.targets.Front()
}

func (c *Composer) ready() error {
	if c.err != nil {
		return c.err
	}
	if c.targets == nil {
		return fmt.Errorf("composer %s: no targets allocated", c.Label)
	}
	return nil
}

func (c *Composer) release() {
	if c.targets == nil {
		return
	}
	c.targets.Front().Release()
	c.targets.Back().Release()
	c.targets = nil
}

func (c *Composer) Release() {
	c.release()
}
