package pass

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/umbra3d/umbra/engine/entity"
	"github.com/umbra3d/umbra/engine/gpu"
	"github.com/umbra3d/umbra/engine/light"
)

// Depth bias applied while baking shadow maps, to keep shadowed surfaces from
// self-shadowing ("shadow acne").
const (
	shadowDepthBias           int32   = 2
	shadowDepthBiasSlopeScale float32 = 2.0
)

// ShadowPass bakes the shadow map: one depth-only sub-pass per light, each
// rendering every entity into that light's layer of the shadow texture array.
// The instance index of each draw selects the light's projection-view matrix
// in the shader.
type ShadowPass struct {
	pipeline  *wgpu.RenderPipeline
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
}

// NewShadowPass builds the depth-only bake pipeline.
//
// Parameters:
//   - ctx: the GPU context to allocate resources on
//   - shader: the compiled engine shader module
//   - lights: the light set whose storage buffer the bake shader indexes
//   - entityLayout: the per-entity dynamic-offset bind group layout
//
// Returns:
//   - *ShadowPass: the constructed pass
//   - error: if resource creation fails
func NewShadowPass(ctx gpu.Context, shader *wgpu.ShaderModule, lights *light.Set, entityLayout *wgpu.BindGroupLayout) (*ShadowPass, error) {
	p := &ShadowPass{}

	layout, err := ctx.Device().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Bake Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: light.GPULightSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pass: failed to create shadow bind group layout: %w", err)
	}
	p.layout = layout

	bindGroup, err := ctx.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shadow Bake Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 1, Buffer: lights.Buffer(), Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create shadow bind group: %w", err)
	}
	p.bindGroup = bindGroup

	pipelineLayout, err := ctx.Device().CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Bake Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout, entityLayout},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create shadow pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	// Depth-only: no fragment state, no color targets.
	pipeline, err := ctx.Device().CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Bake Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_bake",
			Buffers:    []wgpu.VertexBufferLayout{entity.VertexLayout()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              gpu.DepthFormat,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLessEqual,
			StencilReadMask:     0xFFFFFFFF,
			StencilWriteMask:    0xFFFFFFFF,
			DepthBias:           shadowDepthBias,
			DepthBiasSlopeScale: shadowDepthBiasSlopeScale,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create shadow pipeline: %w", err)
	}
	p.pipeline = pipeline

	return p, nil
}

// Record records one depth-only sub-pass per shadow map layer. Each sub-pass
// clears its layer to 1.0, stores it, and draws the whole scene with the
// instance range [i, i+1) so the bake shader picks light i's matrix.
//
// Parameters:
//   - enc: the frame's command encoder
//   - targets: the shadow map layer views, in light order
//   - scene: the draw list to bake into each layer
//
// Returns:
//   - error: if ending a sub-pass fails
func (p *ShadowPass) Record(enc Encoder, targets []*wgpu.TextureView, scene Scene) error {
	for i, target := range targets {
		r := enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label: fmt.Sprintf("Shadow Pass Layer %d", i),
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            target,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore, // Must store — this is the shadow map
				DepthClearValue: 1.0,
			},
		})

		r.SetPipeline(p.pipeline)
		r.SetBindGroup(0, p.bindGroup, nil)
		draw(r, scene, uint32(i))

		if err := r.End(); err != nil {
			return fmt.Errorf("pass: shadow sub-pass %d failed: %w", i, err)
		}
		r.Release()
	}
	return nil
}

// Release frees the pass's GPU resources.
func (p *ShadowPass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}
