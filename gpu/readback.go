package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
)

// Readback copies the composer's current output into dst. It blocks until the GPU
// has finished all submitted work, so it is meant for snapshots and debugging.
func (c *Composer) Readback(dst *core.StateTexture) error {
	if err := c.ready(); err != nil {
		return err
	}
	src := c.Output()
	if uint32(dst.Width) != src.Width || uint32(dst.Height) != src.Height {
		return core.ErrSizeMismatch
	}

	bytesPerRow := (src.Width*bytesPerTexel(src.Format) + 255) &^ uint32(255)
	size := uint64(bytesPerRow) * uint64(src.Height)

	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: c.Label + " readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("readback buffer: %w", err)
	}
	defer buf.Release()

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("readback encoder: %w", err)
	}
	defer encoder.Release()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  src.Texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buf,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  bytesPerRow,
				RowsPerImage: src.Height,
			},
		},
		&wgpu.Extent3D{Width: src.Width, Height: src.Height, DepthOrArrayLayers: 1},
	)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("readback finish: %w", err)
	}
	defer cmd.Release()
	c.queue.Submit(cmd)

	var status wgpu.BufferMapAsyncStatus
	mapped := false
	err = buf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		mapped = true
	})
	if err != nil {
		return fmt.Errorf("readback map: %w", err)
	}
	c.device.Poll(true, nil)
	if !mapped || status != wgpu.BufferMapAsyncStatusSuccess {
		return fmt.Errorf("readback map status %v", status)
	}
	defer buf.Unmap()

	return dst.DecodeTexels(buf.GetMappedRange(0, uint(size)), bytesPerRow)
}
