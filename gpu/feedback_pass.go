package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/shaders"
	"github.com/google/uuid"
)

// Both feedback passes share one layout: the pass's previous output at binding 0,
// the other state texture at binding 1 and a 16-byte parameter block at binding 2.
const feedbackUniformSize = 16

// bind groups are cached per (previous, input) target pair; ping-pong keeps this small
const maxCachedBindGroups = 8

type bindKey struct {
	prev  uuid.UUID
	input uuid.UUID
}

type feedbackPass struct {
	name       string
	device     *wgpu.Device
	queue      *wgpu.Queue
	pipeline   *wgpu.RenderPipeline
	layout     *wgpu.BindGroupLayout
	uniforms   *wgpu.Buffer
	bindGroups map[bindKey]*wgpu.BindGroup
}

func newFeedbackPass(device *wgpu.Device, queue *wgpu.Queue, name, code string, format wgpu.TextureFormat) (*feedbackPass, error) {
	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name + " shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", name, err)
	}
	defer shader.Release()

	stateTexture := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  false,
			},
		}
	}
	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: name + " BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			stateTexture(0),
			stateTexture(1),
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: feedbackUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s bind group layout: %w", name, err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name + " layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("%s pipeline layout: %w", name, err)
	}
	defer pipelineLayout.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  name + " pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("%s pipeline: %w", name, err)
	}

	uniforms, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name + " params",
		Size:  feedbackUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		pipeline.Release()
		layout.Release()
		return nil, fmt.Errorf("%s params buffer: %w", name, err)
	}

	return &feedbackPass{
		name:       name,
		device:     device,
		queue:      queue,
		pipeline:   pipeline,
		layout:     layout,
		uniforms:   uniforms,
		bindGroups: make(map[bindKey]*wgpu.BindGroup),
	}, nil
}

func (p *feedbackPass) bindGroup(prev, input *Target) (*wgpu.BindGroup, error) {
	key := bindKey{prev: prev.ID, input: input.ID}
	if bg, ok := p.bindGroups[key]; ok {
		return bg, nil
	}
	if len(p.bindGroups) >= maxCachedBindGroups {
		p.releaseBindGroups()
	}
	bg, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  p.name + " BG",
		Layout: p.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: prev.View},
			{Binding: 1, TextureView: input.View},
			{Binding: 2, Buffer: p.uniforms, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, err
	}
	p.bindGroups[key] = bg
	return bg, nil
}

// run renders prev and input through the pass into dst and submits the work.
func (p *feedbackPass) run(prev, input, dst *Target, params [4]float32) error {
	if input == nil {
		return fmt.Errorf("%s: %w", p.name, core.ErrUnboundInput)
	}
	if prev.Width != dst.Width || prev.Height != dst.Height || input.Width != dst.Width || input.Height != dst.Height {
		return fmt.Errorf("%s: %w", p.name, core.ErrSizeMismatch)
	}
	p.queue.WriteBuffer(p.uniforms, 0, wgpu.ToBytes(params[:]))
	bg, err := p.bindGroup(prev, input)
	if err != nil {
		return fmt.Errorf("%s bind group: %w", p.name, err)
	}

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("%s encoder: %w", p.name, err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       dst.View,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)
	err = pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("%s pass end: %w", p.name, err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("%s finish: %w", p.name, err)
	}
	defer cmd.Release()
	p.queue.Submit(cmd)
	return nil
}

func (p *feedbackPass) releaseBindGroups() {
	for k, bg := range p.bindGroups {
		bg.Release()
		delete(p.bindGroups, k)
	}
}

func (p *feedbackPass) Release() {
	p.releaseBindGroups()
	if p.uniforms != nil {
		p.uniforms.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
}

// VelocityPass runs shaders/velocity.wgsl. It implements core.VelocityStage[*Target].
type VelocityPass struct {
	*feedbackPass
	Params core.VelocityParams
	tPos   *Target
}

func NewVelocityPass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, limitToBounce float32) (*VelocityPass, error) {
	fp, err := newFeedbackPass(device, queue, "velocity", shaders.VelocityWGSL, format)
	if err != nil {
		return nil, err
	}
	return &VelocityPass{feedbackPass: fp, Params: core.VelocityParams{LimitToBounce: limitToBounce}}, nil
}

func (p *VelocityPass) Name() string { return "velocity" }

func (p *VelocityPass) SetPositions(tPos *Target) { p.tPos = tPos }

func (p *VelocityPass) Run(prev, dst *Target) error {
	return p.run(prev, p.tPos, dst, [4]float32{p.Params.LimitToBounce})
}

// PositionPass runs shaders/position.wgsl. It implements core.PositionStage[*Target].
type PositionPass struct {
	*feedbackPass
	Params core.PositionParams
	tVel   *Target
}

func NewPositionPass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat) (*PositionPass, error) {
	fp, err := newFeedbackPass(device, queue, "position", shaders.PositionWGSL, format)
	if err != nil {
		return nil, err
	}
	return &PositionPass{feedbackPass: fp, Params: core.PositionParams{Step: core.IntegrationStep}}, nil
}

func (p *PositionPass) Name() string { return "position" }

func (p *PositionPass) SetVelocities(tVel *Target) { p.tVel = tVel }

func (p *PositionPass) Run(prev, dst *Target) error {
	return p.run(prev, p.tVel, dst, [4]float32{p.Params.Step})
}
