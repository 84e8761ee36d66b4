// package material owns the shadow map resources shared by the render passes:
// the depth texture array the shadow passes render into, the views and
// samplers the forward pass reads it through, and the debug overlay that
// visualizes a single shadow layer on screen.
package material

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/umbra3d/umbra/engine/camera"
	"github.com/umbra3d/umbra/engine/gpu"
)

// DefaultShadowMapSize is the edge length in texels of each shadow map layer.
const DefaultShadowMapSize uint32 = 2048

// QuadRecorder is the subset of render pass recording the debug overlay needs.
// The pass package's recorder satisfies it.
type QuadRecorder interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// ShadowMaterial holds the shadow depth texture array and everything needed to
// write and read it. Layer i belongs to light i: the shadow pass renders into
// LayerView(i), the forward pass samples the whole array through ArrayView
// with the comparison sampler.
type ShadowMaterial struct {
	texture    *wgpu.Texture
	layerViews []*wgpu.TextureView
	arrayView  *wgpu.TextureView

	comparisonSampler *wgpu.Sampler
	debugSampler      *wgpu.Sampler

	size uint32

	// Debug overlay state. The overlay replaces the lit scene for one frame
	// and shows the shadow map layer selected by SetLayer.
	debugPipeline  *wgpu.RenderPipeline
	debugLayout    *wgpu.BindGroupLayout
	debugBindGroup *wgpu.BindGroup
	debugPVBuffer  *wgpu.Buffer
	layerBuffer    *wgpu.Buffer
	layer          uint32
}

// NewShadowMaterial allocates the shadow texture array with one layer per
// light plus the samplers and debug overlay pipeline.
//
// Parameters:
//   - ctx: the GPU context to allocate resources on
//   - shader: the compiled engine shader module (provides vs_debug/fs_debug)
//   - lightCount: number of array layers, one per light, at least one
//   - options: variadic list of ShadowMaterialOption functions
//
// Returns:
//   - *ShadowMaterial: the constructed material
//   - error: if lightCount is not positive or resource creation fails
func NewShadowMaterial(ctx gpu.Context, shader *wgpu.ShaderModule, lightCount int, options ...ShadowMaterialOption) (*ShadowMaterial, error) {
	if lightCount <= 0 {
		return nil, fmt.Errorf("material: shadow map needs at least one layer, got %d", lightCount)
	}

	m := &ShadowMaterial{size: DefaultShadowMapSize}
	for _, opt := range options {
		opt(m)
	}

	if err := m.createTexture(ctx, lightCount); err != nil {
		m.Release()
		return nil, err
	}
	if err := m.createSamplers(ctx); err != nil {
		m.Release()
		return nil, err
	}
	if err := m.createDebugOverlay(ctx, shader); err != nil {
		m.Release()
		return nil, err
	}

	return m, nil
}

func (m *ShadowMaterial) createTexture(ctx gpu.Context, lightCount int) error {
	texture, err := ctx.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Map Texture",
		Size: wgpu.Extent3D{
			Width:              m.size,
			Height:             m.size,
			DepthOrArrayLayers: uint32(lightCount),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        gpu.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("material: failed to create shadow texture: %w", err)
	}
	m.texture = texture

	arrayView, err := texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Shadow Map Array View",
		Format:          gpu.DepthFormat,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(lightCount),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return fmt.Errorf("material: failed to create shadow array view: %w", err)
	}
	m.arrayView = arrayView

	for i := 0; i < lightCount; i++ {
		layerView, err := texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("Shadow Map Layer View %d", i),
			Format:          gpu.DepthFormat,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(i),
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			return fmt.Errorf("material: failed to create shadow layer view %d: %w", i, err)
		}
		m.layerViews = append(m.layerViews, layerView)
	}

	return nil
}

func (m *ShadowMaterial) createSamplers(ctx gpu.Context) error {
	comparison, err := ctx.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionLessEqual,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("material: failed to create comparison sampler: %w", err)
	}
	m.comparisonSampler = comparison

	debug, err := ctx.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Debug Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("material: failed to create debug sampler: %w", err)
	}
	m.debugSampler = debug

	return nil
}

func (m *ShadowMaterial) createDebugOverlay(ctx gpu.Context, shader *wgpu.ShaderModule) error {
	pv := debugProjectionView()
	pvBuffer, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Shadow Debug Projection Buffer",
		Contents: wgpu.ToBytes(pv[:]),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("material: failed to create debug projection buffer: %w", err)
	}
	m.debugPVBuffer = pvBuffer

	layerBuffer, err := ctx.Device().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Shadow Debug Layer Buffer",
		Contents: wgpu.ToBytes([]uint32{0}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("material: failed to create debug layer buffer: %w", err)
	}
	m.layerBuffer = layerBuffer

	layout, err := ctx.Device().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Debug Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    4,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 64,
				},
			},
			{
				Binding:    5,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 4,
				},
			},
			{
				Binding:    6,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeNonFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("material: failed to create debug bind group layout: %w", err)
	}
	m.debugLayout = layout

	bindGroup, err := ctx.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shadow Debug Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 2, TextureView: m.arrayView},
			{Binding: 4, Buffer: pvBuffer, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: layerBuffer, Size: wgpu.WholeSize},
			{Binding: 6, Sampler: m.debugSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("material: failed to create debug bind group: %w", err)
	}
	m.debugBindGroup = bindGroup

	pipelineLayout, err := ctx.Device().CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Debug Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("material: failed to create debug pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	pipeline, err := ctx.Device().CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Debug Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_debug",
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            gpu.DepthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_debug",
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
		return fmt.Errorf("material: failed to create debug pipeline: %w", err)
	}
	m.debugPipeline = pipeline

	return nil
}

// debugProjectionView builds the fixed top-down view used by the overlay: an
// orthographic projection framing [-1, 1], the unit quad vs_debug emits,
// looking straight down the z axis. The tiny y offset keeps the eye direction
// from being parallel to up.
func debugProjectionView() mgl32.Mat4 {
	projection := camera.Ortho(-1, 1, -1, 1, 0.1, 1000)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0.0001, 200}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	return projection.Mul4(view)
}

// Size returns the edge length of each shadow map layer in texels.
func (m *ShadowMaterial) Size() uint32 {
	return m.size
}

// LayerCount returns the number of shadow map layers.
func (m *ShadowMaterial) LayerCount() int {
	return len(m.layerViews)
}

// LayerView returns the render-target view of the given shadow map layer.
//
// Parameters:
//   - layer: layer index, 0 <= layer < LayerCount
//
// Returns:
//   - *wgpu.TextureView: the layer view
//   - error: if layer is out of range
func (m *ShadowMaterial) LayerView(layer int) (*wgpu.TextureView, error) {
	if layer < 0 || layer >= len(m.layerViews) {
		return nil, fmt.Errorf("material: shadow layer %d out of range [0, %d)", layer, len(m.layerViews))
	}
	return m.layerViews[layer], nil
}

// LayerViews returns the render-target views of all layers, in layer order.
func (m *ShadowMaterial) LayerViews() []*wgpu.TextureView {
	return m.layerViews
}

// ArrayView returns the full texture array view the forward pass samples.
func (m *ShadowMaterial) ArrayView() *wgpu.TextureView {
	return m.arrayView
}

// ComparisonSampler returns the less-equal comparison sampler used for shadow
// tests in the forward pass.
func (m *ShadowMaterial) ComparisonSampler() *wgpu.Sampler {
	return m.comparisonSampler
}

// Layer returns the shadow map layer the debug overlay currently shows.
func (m *ShadowMaterial) Layer() int {
	return int(m.layer)
}

// SetLayer selects the shadow map layer the debug overlay shows.
//
// Parameters:
//   - ctx: the GPU context whose queue receives the uniform write
//   - layer: layer index, 0 <= layer < LayerCount
//
// Returns:
//   - error: if layer is out of range or the write fails
func (m *ShadowMaterial) SetLayer(ctx gpu.Context, layer int) error {
	if layer < 0 || layer >= len(m.layerViews) {
		return fmt.Errorf("material: shadow layer %d out of range [0, %d)", layer, len(m.layerViews))
	}
	if err := ctx.WriteUint32(m.layerBuffer, uint32(layer)); err != nil {
		return fmt.Errorf("material: failed to write debug layer: %w", err)
	}
	m.layer = uint32(layer)
	return nil
}

// RecordDebug records the overlay quad into an already-begun render pass,
// replacing the lit scene with the selected shadow map layer.
//
// Parameters:
//   - r: the active render pass recorder
func (m *ShadowMaterial) RecordDebug(r QuadRecorder) {
	r.SetPipeline(m.debugPipeline)
	r.SetBindGroup(0, m.debugBindGroup, nil)
	r.Draw(6, 1, 0, 0)
}

// Release frees all GPU resources owned by the material.
func (m *ShadowMaterial) Release() {
	if m.debugPipeline != nil {
		m.debugPipeline.Release()
		m.debugPipeline = nil
	}
	if m.debugBindGroup != nil {
		m.debugBindGroup.Release()
		m.debugBindGroup = nil
	}
	if m.debugLayout != nil {
		m.debugLayout.Release()
		m.debugLayout = nil
	}
	if m.layerBuffer != nil {
		m.layerBuffer.Release()
		m.layerBuffer = nil
	}
	if m.debugPVBuffer != nil {
		m.debugPVBuffer.Release()
		m.debugPVBuffer = nil
	}
	if m.debugSampler != nil {
		m.debugSampler.Release()
		m.debugSampler = nil
	}
	if m.comparisonSampler != nil {
		m.comparisonSampler.Release()
		m.comparisonSampler = nil
	}
	for _, v := range m.layerViews {
		v.Release()
	}
	m.layerViews = nil
	if m.arrayView != nil {
		m.arrayView.Release()
		m.arrayView = nil
	}
	if m.texture != nil {
		m.texture.Release()
		m.texture = nil
	}
}
