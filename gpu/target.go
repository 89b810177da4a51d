package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
	"github.com/google/uuid"
)

var ErrStencilUnsupported = errors.New("stencil buffers are not supported on simulation targets")

// Target is one off-screen color attachment of a composer.
type Target struct {
	ID      uuid.UUID
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Format  wgpu.TextureFormat
	Width   uint32
	Height  uint32
}

// TextureFormat maps composer settings to a renderable WebGPU format.
// WebGPU has no renderable three-channel float format, so RGB targets use RGBA32Float.
func TextureFormat(s core.TargetSettings) wgpu.TextureFormat {
	if s.Type == core.TypeUnsignedByte {
		return wgpu.TextureFormatRGBA8Unorm
	}
	return wgpu.TextureFormatRGBA32Float
}

func bytesPerTexel(format wgpu.TextureFormat) uint32 {
	if format == wgpu.TextureFormatRGBA8Unorm {
		return 4
	}
	return 16
}

func newTarget(device *wgpu.Device, label string, w, h uint32, format wgpu.TextureFormat) (*Target, error) {
	id := uuid.New()
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fmt.Sprintf("%s %s", label, id),
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage: wgpu.TextureUsageRenderAttachment |
			wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageCopyDst |
			wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create target %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create target view %s: %w", label, err)
	}
	return &Target{
		ID:      id,
		Texture: tex,
		View:    view,
		Format:  format,
		Width:   w,
		Height:  h,
	}, nil
}

func (t *Target) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
	}
	if t.Texture != nil {
		t.Texture.Release()
	}
}

func (t *Target) upload(queue *wgpu.Queue, data *core.StateTexture) error {
	if uint32(data.Width) != t.Width || uint32(data.Height) != t.Height {
		return fmt.Errorf("upload %dx%d into %dx%d target: %w", data.Width, data.Height, t.Width, t.Height, core.ErrSizeMismatch)
	}
	if t.Format != wgpu.TextureFormatRGBA32Float {
		return fmt.Errorf("upload into %v target: only RGBA32Float is supported", t.Format)
	}
	extent := wgpu.Extent3D{Width: t.Width, Height: t.Height, DepthOrArrayLayers: 1}
	return queue.WriteTexture(
		t.Texture.AsImageCopy(),
		data.Bytes(),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  t.Width * bytesPerTexel(t.Format),
			RowsPerImage: t.Height,
		},
		&extent,
	)
}
