package pass

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/umbra3d/umbra/common"
	"github.com/umbra3d/umbra/engine/entity"
	"github.com/umbra3d/umbra/engine/gpu"
	"github.com/umbra3d/umbra/engine/light"
	"github.com/umbra3d/umbra/engine/material"
)

// clearColor is the background color of every presented frame.
var clearColor = wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// gpuGlobals mirrors the WGSL Globals uniform: the camera projection-view
// matrix plus the light count, padded to a vec4. 80 bytes.
type gpuGlobals struct {
	ViewProj  [16]float32
	NumLights [4]uint32
}

const gpuGlobalsSize = 80

// ForwardPass shades the scene into the surface using the baked shadow maps,
// or draws the shadow debug overlay instead. Exactly one of Record and
// RecordDebug runs per frame; both clear the same color and depth targets.
type ForwardPass struct {
	pipeline  *wgpu.RenderPipeline
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
	globals   *wgpu.Buffer
}

// NewForwardPass builds the lit-scene pipeline and its global bind group. The
// projection-view matrix starts as identity; the caller uploads the real one
// through UpdateProjectionView before the first frame.
//
// Parameters:
//   - ctx: the GPU context to allocate resources on
//   - shader: the compiled engine shader module
//   - lights: the lights to shade with
//   - mat: the shadow material providing the map array and comparison sampler
//   - entityLayout: the per-entity dynamic-offset bind group layout
//
// Returns:
//   - *ForwardPass: the constructed pass
//   - error: if resource creation fails
func NewForwardPass(ctx gpu.Context, shader *wgpu.ShaderModule, lights *light.Set, mat *material.ShadowMaterial, entityLayout *wgpu.BindGroupLayout) (*ForwardPass, error) {
	p := &ForwardPass{}

	initial := gpuGlobals{NumLights: [4]uint32{uint32(lights.Count()), 0, 0, 0}}
	identity := mgl32.Ident4()
	copy(initial.ViewProj[:], identity[:])

	globals, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Forward Globals Buffer",
		Contents: common.StructToBytes(&initial),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("pass: failed to create globals buffer: %w", err)
	}
	p.globals = globals

	layout, err := ctx.Device().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Forward Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: gpuGlobalsSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: light.GPULightSize,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeComparison,
				},
			},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create forward bind group layout: %w", err)
	}
	p.layout = layout

	bindGroup, err := ctx.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Forward Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: globals, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: lights.Buffer(), Size: wgpu.WholeSize},
			{Binding: 2, TextureView: mat.ArrayView()},
			{Binding: 3, Sampler: mat.ComparisonSampler()},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create forward bind group: %w", err)
	}
	p.bindGroup = bindGroup

	pipelineLayout, err := ctx.Device().CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Forward Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout, entityLayout},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create forward pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	pipeline, err := ctx.Device().CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Forward Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{entity.VertexLayout()},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            gpu.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    ctx.Config().Format,
					Blend:     &wgpu.BlendStateReplace,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("pass: failed to create forward pipeline: %w", err)
	}
	p.pipeline = pipeline

	return p, nil
}

// UpdateProjectionView uploads the camera projection-view matrix. Called on
// startup, on viewpoint changes, and on every resize.
//
// Parameters:
//   - ctx: the GPU context whose queue receives the write
//   - pv: the new projection-view matrix
//
// Returns:
//   - error: if the write fails
func (p *ForwardPass) UpdateProjectionView(ctx gpu.Context, pv mgl32.Mat4) error {
	if err := ctx.WriteMat4(p.globals, &pv); err != nil {
		return fmt.Errorf("pass: failed to upload projection-view: %w", err)
	}
	return nil
}

// begin starts the forward render pass: surface cleared to the background
// color, screen depth cleared to 1.0 and discarded after the pass.
func (p *ForwardPass) begin(enc Encoder, frame, depth *wgpu.TextureView, label string) Recorder {
	return enc.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       frame,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard, // Depth not needed after the pass
			DepthClearValue: 1.0,
		},
	})
}

// Record shades the scene into the frame with single-instance draws.
//
// Parameters:
//   - enc: the frame's command encoder
//   - frame: the acquired surface view
//   - depth: the screen depth view
//   - scene: the draw list to shade
//
// Returns:
//   - error: if ending the pass fails
func (p *ForwardPass) Record(enc Encoder, frame, depth *wgpu.TextureView, scene Scene) error {
	r := p.begin(enc, frame, depth, "Forward Pass")

	r.SetPipeline(p.pipeline)
	r.SetBindGroup(0, p.bindGroup, nil)
	draw(r, scene, 0)

	if err := r.End(); err != nil {
		return fmt.Errorf("pass: forward pass failed: %w", err)
	}
	r.Release()
	return nil
}

// Overlay replaces the lit scene with a visualization drawn into the same
// render pass. *material.ShadowMaterial satisfies it.
type Overlay interface {
	RecordDebug(r material.QuadRecorder)
}

// RecordDebug draws the shadow map overlay instead of the lit scene, clearing
// the same targets.
//
// Parameters:
//   - enc: the frame's command encoder
//   - frame: the acquired surface view
//   - depth: the screen depth view
//   - overlay: the overlay to draw, typically the shadow material
//
// Returns:
//   - error: if ending the pass fails
func (p *ForwardPass) RecordDebug(enc Encoder, frame, depth *wgpu.TextureView, overlay Overlay) error {
	r := p.begin(enc, frame, depth, "Shadow Debug Pass")

	overlay.RecordDebug(r)

	if err := r.End(); err != nil {
		return fmt.Errorf("pass: debug pass failed: %w", err)
	}
	r.Release()
	return nil
}

// Release frees the pass's GPU resources.
func (p *ForwardPass) Release() {
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
	if p.globals != nil {
		p.globals.Release()
		p.globals = nil
	}
}
