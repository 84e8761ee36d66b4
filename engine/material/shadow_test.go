package material

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umbra3d/umbra/engine/gpu"
)

// fakeContext records uniform writes without touching a device.
type fakeContext struct {
	uint32Writes []uint32
}

var _ gpu.Context = &fakeContext{}

func (f *fakeContext) Device() *wgpu.Device                     { return nil }
func (f *fakeContext) Queue() *wgpu.Queue                       { return nil }
func (f *fakeContext) Config() *wgpu.SurfaceConfiguration       { return &wgpu.SurfaceConfiguration{} }
func (f *fakeContext) Resize(width, height int)                 {}
func (f *fakeContext) AcquireFrame() (*wgpu.TextureView, error) { return nil, nil }
func (f *fakeContext) Present()                                 {}
func (f *fakeContext) DropFrame()                               {}

func (f *fakeContext) CreateDepthTexture(width, height uint32) (*wgpu.TextureView, error) {
	return nil, nil
}

func (f *fakeContext) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	return nil
}

func (f *fakeContext) WriteMat4(buf *wgpu.Buffer, m *mgl32.Mat4) error { return nil }

func (f *fakeContext) WriteUint32(buf *wgpu.Buffer, v uint32) error {
	f.uint32Writes = append(f.uint32Writes, v)
	return nil
}

func (f *fakeContext) UniformAlignment() uint64 { return 256 }
func (f *fakeContext) Release()                 {}

func TestSetLayerValidatesRange(t *testing.T) {
	ctx := &fakeContext{}
	m := &ShadowMaterial{layerViews: make([]*wgpu.TextureView, 2)}

	require.NoError(t, m.SetLayer(ctx, 1))
	assert.Equal(t, 1, m.Layer())
	assert.Equal(t, []uint32{1}, ctx.uint32Writes)

	assert.Error(t, m.SetLayer(ctx, 2))
	assert.Error(t, m.SetLayer(ctx, -1))
	assert.Equal(t, 1, m.Layer(), "rejected writes leave the selection unchanged")
	assert.Len(t, ctx.uint32Writes, 1, "out-of-range layers are never uploaded")
}

func TestLayerViewValidatesRange(t *testing.T) {
	m := &ShadowMaterial{layerViews: make([]*wgpu.TextureView, 2)}

	_, err := m.LayerView(0)
	assert.NoError(t, err)
	_, err = m.LayerView(2)
	assert.Error(t, err)
	_, err = m.LayerView(-1)
	assert.Error(t, err)

	assert.Equal(t, 2, m.LayerCount())
}

func TestDebugProjectionFramesQuad(t *testing.T) {
	pv := debugProjectionView()

	// vs_debug emits the quad corners at ±1 in the z=0 plane.
	for _, corner := range []mgl32.Vec4{
		{-1, -1, 0, 1},
		{1, 1, 0, 1},
	} {
		clip := pv.Mul4x1(corner)
		ndc := clip.Mul(1 / clip.W())
		assert.InDelta(t, 1.0, abs(ndc.X()), 1e-3, "quad corners land on the clip edge")
		assert.InDelta(t, 1.0, abs(ndc.Y()), 1e-3, "quad corners land on the clip edge")
		assert.GreaterOrEqual(t, ndc.Z(), float32(0.0))
		assert.LessOrEqual(t, ndc.Z(), float32(1.0))
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
