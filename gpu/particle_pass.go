package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/shaders"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ParticleVertex matches VertexInput in particles.wgsl.
type ParticleVertex struct {
	UV [2]float32
}

// ParticleUniforms matches Uniforms in particles.wgsl.
type ParticleUniforms struct {
	ViewProj    mgl32.Mat4
	Color       [4]float32
	TextureSize float32
	Spread      float32
	_           [2]float32
}

// mgl32 projections map depth to [-1,1]; WebGPU clips to [0,1].
var glToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// ParticleVertices builds one vertex per particle carrying its grid UV.
func ParticleVertices(n int) []ParticleVertex {
	vertices := make([]ParticleVertex, n*n)
	for i := range vertices {
		u, v := core.GridUV(i, n)
		vertices[i] = ParticleVertex{UV: [2]float32{u, v}}
	}
	return vertices
}

// ParticleRenderPass draws the N×N point cloud displaced by the bound position target.
type ParticleRenderPass struct {
	Pipeline      *wgpu.RenderPipeline
	Layout        *wgpu.BindGroupLayout
	VertexBuffer  *wgpu.Buffer
	UniformBuffer *wgpu.Buffer
	VertexCount   uint32
	Uniforms      ParticleUniforms

	device     *wgpu.Device
	queue      *wgpu.Queue
	source     *Target
	bindGroups map[uuid.UUID]*wgpu.BindGroup
}

func NewParticleRenderPass(device *wgpu.Device, queue *wgpu.Queue, format wgpu.TextureFormat, n int) (*ParticleRenderPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticlesShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticlesWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer shaderModule.Release()

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticlesBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(unsafe.Sizeof(ParticleUniforms{})),
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	// Additive points, no depth test or depth write.
	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ParticlesPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(ParticleVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyPointList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	vertices := ParticleVertices(n)
	vertexBuffer, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Particles VB",
		Contents: wgpu.ToBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("particles vertex buffer: %w", err)
	}

	uniformBuffer, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Particles UB",
		Size:  uint64(unsafe.Sizeof(ParticleUniforms{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("particles uniform buffer: %w", err)
	}

	return &ParticleRenderPass{
		Pipeline:      pipeline,
		Layout:        bgl,
		VertexBuffer:  vertexBuffer,
		UniformBuffer: uniformBuffer,
		VertexCount:   uint32(len(vertices)),
		Uniforms: ParticleUniforms{
			ViewProj:    mgl32.Ident4(),
			Color:       [4]float32{0.25, 0.25, 0.25, 1},
			TextureSize: float32(n),
			Spread:      core.DefaultSpread,
		},
		device:     device,
		queue:      queue,
		bindGroups: make(map[uuid.UUID]*wgpu.BindGroup),
	}, nil
}

// SetSource binds the position target sampled by the vertex stage.
func (p *ParticleRenderPass) SetSource(t *Target) {
	p.source = t
}

// UpdateCamera uploads the camera's view-projection, converted to WebGPU clip space.
func (p *ParticleRenderPass) UpdateCamera(cam *core.Camera) {
	p.Uniforms.ViewProj = glToWebGPU.Mul4(cam.ViewProjection())
	p.queue.WriteBuffer(p.UniformBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&p.Uniforms)), unsafe.Sizeof(p.Uniforms)))
}

func (p *ParticleRenderPass) bindGroup() (*wgpu.BindGroup, error) {
	if bg, ok := p.bindGroups[p.source.ID]; ok {
		return bg, nil
	}
	if len(p.bindGroups) >= maxCachedBindGroups {
		for id, bg := range p.bindGroups {
			bg.Release()
			delete(p.bindGroups, id)
		}
	}
	bg, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ParticlesBG",
		Layout: p.Layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.UniformBuffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: p.source.View},
		},
	})
	if err != nil {
		return nil, err
	}
	p.bindGroups[p.source.ID] = bg
	return bg, nil
}

// Draw records the point draw into an open render pass.
func (p *ParticleRenderPass) Draw(pass *wgpu.RenderPassEncoder) error {
	if p.source == nil {
		return nil
	}
	bg, err := p.bindGroup()
	if err != nil {
		return fmt.Errorf("particles bind group: %w", err)
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.SetVertexBuffer(0, p.VertexBuffer, 0, p.VertexBuffer.GetSize())
	pass.Draw(p.VertexCount, 1, 0, 0)
	return nil
}

func (p *ParticleRenderPass) Release() {
	for id, bg := range p.bindGroups {
		bg.Release()
		delete(p.bindGroups, id)
	}
	p.VertexBuffer.Release()
	p.UniformBuffer.Release()
	p.Pipeline.Release()
	p.Layout.Release()
}
