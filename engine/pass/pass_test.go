package pass

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umbra3d/umbra/engine/material"
)

type bindGroupCall struct {
	groupIndex     uint32
	group          *wgpu.BindGroup
	dynamicOffsets []uint32
}

type drawIndexedCall struct {
	indexCount    uint32
	instanceCount uint32
	firstIndex    uint32
	baseVertex    int32
	firstInstance uint32
}

type drawCall struct {
	vertexCount   uint32
	instanceCount uint32
	firstVertex   uint32
	firstInstance uint32
}

// fakeRecorder records every call so tests can assert on the command stream
// without a device.
type fakeRecorder struct {
	pipelines   []*wgpu.RenderPipeline
	bindGroups  []bindGroupCall
	drawIndexed []drawIndexedCall
	draws       []drawCall
	ended       bool
	released    bool
}

var _ Recorder = &fakeRecorder{}

func (f *fakeRecorder) SetPipeline(pipeline *wgpu.RenderPipeline) {
	f.pipelines = append(f.pipelines, pipeline)
}

func (f *fakeRecorder) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	f.bindGroups = append(f.bindGroups, bindGroupCall{groupIndex, group, dynamicOffsets})
}

func (f *fakeRecorder) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {}

func (f *fakeRecorder) SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
}

func (f *fakeRecorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	f.drawIndexed = append(f.drawIndexed, drawIndexedCall{indexCount, instanceCount, firstIndex, baseVertex, firstInstance})
}

func (f *fakeRecorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	f.draws = append(f.draws, drawCall{vertexCount, instanceCount, firstVertex, firstInstance})
}

func (f *fakeRecorder) End() error {
	f.ended = true
	return nil
}

func (f *fakeRecorder) Release() {
	f.released = true
}

type fakeEncoder struct {
	descriptors []*wgpu.RenderPassDescriptor
	recorders   []*fakeRecorder
}

var _ Encoder = &fakeEncoder{}

func (f *fakeEncoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) Recorder {
	r := &fakeRecorder{}
	f.descriptors = append(f.descriptors, desc)
	f.recorders = append(f.recorders, r)
	return r
}

func (f *fakeEncoder) Finish(descriptor *wgpu.CommandBufferDescriptor) (*wgpu.CommandBuffer, error) {
	return nil, nil
}

type fakeMesh struct {
	indexCount uint32
	offset     uint32
}

var _ Mesh = fakeMesh{}

func (m fakeMesh) VertexBuffer() *wgpu.Buffer    { return nil }
func (m fakeMesh) IndexBuffer() *wgpu.Buffer     { return nil }
func (m fakeMesh) IndexCount() uint32            { return m.indexCount }
func (m fakeMesh) IndexFormat() wgpu.IndexFormat { return wgpu.IndexFormatUint16 }
func (m fakeMesh) DynamicOffset() uint32         { return m.offset }

func testScene(meshCount int) Scene {
	scene := Scene{}
	for i := 0; i < meshCount; i++ {
		scene.Meshes = append(scene.Meshes, fakeMesh{indexCount: 36, offset: uint32(i) * 256})
	}
	return scene
}

func TestShadowPassRecordsOneSubPassPerLayer(t *testing.T) {
	enc := &fakeEncoder{}
	p := &ShadowPass{}
	targets := make([]*wgpu.TextureView, 3)
	scene := testScene(5)

	err := p.Record(enc, targets, scene)

	require.NoError(t, err)
	require.Len(t, enc.descriptors, 3)
	for layer, desc := range enc.descriptors {
		require.NotNil(t, desc.DepthStencilAttachment, "layer %d", layer)
		assert.Empty(t, desc.ColorAttachments, "layer %d: depth-only", layer)
		assert.Equal(t, wgpu.LoadOpClear, desc.DepthStencilAttachment.DepthLoadOp)
		assert.Equal(t, wgpu.StoreOpStore, desc.DepthStencilAttachment.DepthStoreOp)
		assert.Equal(t, float32(1.0), desc.DepthStencilAttachment.DepthClearValue)

		r := enc.recorders[layer]
		assert.True(t, r.ended, "layer %d pass ended", layer)
		assert.True(t, r.released, "layer %d recorder released", layer)
	}
}

func TestShadowPassDrawsEveryMeshPerLayer(t *testing.T) {
	enc := &fakeEncoder{}
	p := &ShadowPass{}
	targets := make([]*wgpu.TextureView, 2)
	scene := testScene(5)

	err := p.Record(enc, targets, scene)

	require.NoError(t, err)
	total := 0
	for layer, r := range enc.recorders {
		total += len(r.drawIndexed)
		for _, d := range r.drawIndexed {
			assert.Equal(t, uint32(1), d.instanceCount)
			assert.Equal(t, uint32(layer), d.firstInstance, "instance index selects the light")
			assert.Equal(t, uint32(36), d.indexCount)
		}
	}
	assert.Equal(t, 2*5, total, "every mesh drawn into every layer")
}

func TestShadowPassBindsPerMeshOffsets(t *testing.T) {
	enc := &fakeEncoder{}
	p := &ShadowPass{}
	scene := testScene(3)

	err := p.Record(enc, make([]*wgpu.TextureView, 1), scene)

	require.NoError(t, err)
	r := enc.recorders[0]

	var meshBinds []bindGroupCall
	for _, b := range r.bindGroups {
		if b.groupIndex == 1 {
			meshBinds = append(meshBinds, b)
		}
	}
	require.Len(t, meshBinds, 3)
	for i, b := range meshBinds {
		assert.Equal(t, []uint32{uint32(i) * 256}, b.dynamicOffsets)
	}
}

func TestForwardPassRecordsLitScene(t *testing.T) {
	enc := &fakeEncoder{}
	p := &ForwardPass{}
	scene := testScene(5)

	err := p.Record(enc, nil, nil, scene)

	require.NoError(t, err)
	require.Len(t, enc.descriptors, 1)
	desc := enc.descriptors[0]

	require.Len(t, desc.ColorAttachments, 1)
	assert.Equal(t, wgpu.LoadOpClear, desc.ColorAttachments[0].LoadOp)
	assert.Equal(t, wgpu.StoreOpStore, desc.ColorAttachments[0].StoreOp)
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}, desc.ColorAttachments[0].ClearValue)

	require.NotNil(t, desc.DepthStencilAttachment)
	assert.Equal(t, wgpu.LoadOpClear, desc.DepthStencilAttachment.DepthLoadOp)
	assert.Equal(t, wgpu.StoreOpDiscard, desc.DepthStencilAttachment.DepthStoreOp)
	assert.Equal(t, float32(1.0), desc.DepthStencilAttachment.DepthClearValue)

	r := enc.recorders[0]
	require.Len(t, r.drawIndexed, 5)
	for _, d := range r.drawIndexed {
		assert.Equal(t, uint32(1), d.instanceCount)
		assert.Equal(t, uint32(0), d.firstInstance, "lit draws always use instance 0")
	}
	assert.True(t, r.ended)
	assert.True(t, r.released)
}

type fakeOverlay struct {
	recorded int
}

func (o *fakeOverlay) RecordDebug(r material.QuadRecorder) {
	o.recorded++
	r.Draw(6, 1, 0, 0)
}

func TestForwardPassRecordDebugReplacesScene(t *testing.T) {
	enc := &fakeEncoder{}
	p := &ForwardPass{}
	overlay := &fakeOverlay{}

	err := p.RecordDebug(enc, nil, nil, overlay)

	require.NoError(t, err)
	require.Len(t, enc.descriptors, 1)

	// Same clear behavior as the lit path.
	desc := enc.descriptors[0]
	require.Len(t, desc.ColorAttachments, 1)
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}, desc.ColorAttachments[0].ClearValue)

	assert.Equal(t, 1, overlay.recorded)
	r := enc.recorders[0]
	assert.Empty(t, r.drawIndexed, "no scene geometry in the debug pass")
	require.Len(t, r.draws, 1)
	assert.Equal(t, drawCall{6, 1, 0, 0}, r.draws[0])
	assert.True(t, r.ended)
}

func TestForwardPassResumesAfterDebug(t *testing.T) {
	enc := &fakeEncoder{}
	p := &ForwardPass{}
	scene := testScene(4)

	require.NoError(t, p.Record(enc, nil, nil, scene))
	require.NoError(t, p.RecordDebug(enc, nil, nil, &fakeOverlay{}))
	require.NoError(t, p.Record(enc, nil, nil, scene))

	require.Len(t, enc.recorders, 3)
	assert.Len(t, enc.recorders[0].drawIndexed, 4)
	assert.Empty(t, enc.recorders[1].drawIndexed)
	assert.Len(t, enc.recorders[2].drawIndexed, 4, "entity draws resume after the overlay frame")
	assert.Len(t, scene.Meshes, 4, "draw list unmodified")
}
