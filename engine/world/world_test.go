package world

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umbra3d/umbra/engine/camera"
	"github.com/umbra3d/umbra/engine/gpu"
	"github.com/umbra3d/umbra/engine/light"
	"github.com/umbra3d/umbra/engine/pass"
)

// fakeContext records surface reconfigurations, depth-target creations, and
// matrix uploads without a device.
type fakeContext struct {
	config     wgpu.SurfaceConfiguration
	depthCalls [][2]uint32
	matrices   []mgl32.Mat4
	dropped    int
}

var _ gpu.Context = &fakeContext{}

func (f *fakeContext) Device() *wgpu.Device               { return nil }
func (f *fakeContext) Queue() *wgpu.Queue                 { return nil }
func (f *fakeContext) Config() *wgpu.SurfaceConfiguration { return &f.config }

func (f *fakeContext) Resize(width, height int) {
	f.config.Width = uint32(width)
	f.config.Height = uint32(height)
}

func (f *fakeContext) AcquireFrame() (*wgpu.TextureView, error) { return nil, nil }
func (f *fakeContext) Present()                                 {}
func (f *fakeContext) DropFrame()                               { f.dropped++ }

func (f *fakeContext) CreateDepthTexture(width, height uint32) (*wgpu.TextureView, error) {
	f.depthCalls = append(f.depthCalls, [2]uint32{width, height})
	return nil, nil
}

func (f *fakeContext) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	return nil
}

func (f *fakeContext) WriteMat4(buf *wgpu.Buffer, m *mgl32.Mat4) error {
	f.matrices = append(f.matrices, *m)
	return nil
}

func (f *fakeContext) WriteUint32(buf *wgpu.Buffer, v uint32) error { return nil }
func (f *fakeContext) UniformAlignment() uint64                     { return 256 }
func (f *fakeContext) Release()                                     {}

// stubRecorder accepts every command; End fails when endErr is set.
type stubRecorder struct {
	endErr error
}

var _ pass.Recorder = &stubRecorder{}

func (r *stubRecorder) SetPipeline(*wgpu.RenderPipeline)                              {}
func (r *stubRecorder) SetBindGroup(uint32, *wgpu.BindGroup, []uint32)                {}
func (r *stubRecorder) SetVertexBuffer(uint32, *wgpu.Buffer, uint64, uint64)          {}
func (r *stubRecorder) SetIndexBuffer(*wgpu.Buffer, wgpu.IndexFormat, uint64, uint64) {}
func (r *stubRecorder) DrawIndexed(uint32, uint32, uint32, int32, uint32)             {}
func (r *stubRecorder) Draw(uint32, uint32, uint32, uint32)                           {}
func (r *stubRecorder) End() error                                                    { return r.endErr }
func (r *stubRecorder) Release()                                                      {}

type stubEncoder struct {
	endErr    error
	finishErr error
}

var _ pass.Encoder = &stubEncoder{}

func (e *stubEncoder) BeginRenderPass(*wgpu.RenderPassDescriptor) pass.Recorder {
	return &stubRecorder{endErr: e.endErr}
}

func (e *stubEncoder) Finish(*wgpu.CommandBufferDescriptor) (*wgpu.CommandBuffer, error) {
	return nil, e.finishErr
}

func testWorld(ctx gpu.Context) *worldImpl {
	return &worldImpl{
		ctx:         ctx,
		viewpoint:   camera.DefaultViewpoint(),
		lights:      &light.Set{},
		forwardPass: &pass.ForwardPass{},
	}
}

func TestResizeRecreatesDepthAndProjection(t *testing.T) {
	ctx := &fakeContext{}
	ctx.Resize(800, 600)
	w := testWorld(ctx)

	require.NoError(t, w.Resize(1920, 1080))

	require.Len(t, ctx.depthCalls, 1)
	assert.Equal(t, [2]uint32{1920, 1080}, ctx.depthCalls[0], "depth target matches the new surface size")

	require.Len(t, ctx.matrices, 1)
	assert.Equal(t, camera.ProjectionView(1920.0/1080.0), ctx.matrices[0], "projection tracks the new aspect ratio")
}

func TestResizeIgnoresMinimize(t *testing.T) {
	ctx := &fakeContext{}
	ctx.Resize(800, 600)
	w := testWorld(ctx)

	require.NoError(t, w.Resize(0, 600))
	require.NoError(t, w.Resize(800, 0))

	assert.Empty(t, ctx.depthCalls, "minimized sizes keep the old targets")
	assert.Empty(t, ctx.matrices)
}

func TestRenderFailureDropsAcquiredFrame(t *testing.T) {
	ctx := &fakeContext{}
	ctx.Resize(800, 600)
	w := testWorld(ctx)

	_, err := w.renderToSurface(&stubEncoder{endErr: errors.New("pass validation")}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, ctx.dropped, "a frame that fails to record is dropped unpresented")

	_, err = w.renderToSurface(&stubEncoder{finishErr: errors.New("encoder finish")}, nil)
	assert.Error(t, err)
	assert.Equal(t, 2, ctx.dropped, "a frame whose encoder fails to finish is dropped")

	_, err = w.renderToSurface(&stubEncoder{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, ctx.dropped, "a recorded frame stays held for Present")
}

func TestWrapLayer(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		delta    int
		count    int
		expected int
	}{
		{"forward", 0, 1, 3, 1},
		{"forward wraps", 2, 1, 3, 0},
		{"backward", 1, -1, 3, 0},
		{"backward wraps", 0, -1, 3, 2},
		{"large negative delta", 0, -7, 3, 2},
		{"large positive delta", 1, 7, 3, 2},
		{"zero count", 0, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, wrapLayer(tt.current, tt.delta, tt.count))
		})
	}
}

func TestBuilderOptions(t *testing.T) {
	w := &worldImpl{
		viewpoint:     camera.DefaultViewpoint(),
		lightConfigs:  light.DefaultConfigs(),
		shadowMapSize: 2048,
	}

	configs := []light.Config{{}}
	for _, opt := range []WorldBuilderOption{
		WithLights(configs),
		WithShadowMapSize(512),
		WithViewpoint(camera.LightViewpoint(1)),
		WithShadowDebug(true),
	} {
		opt(w)
	}

	assert.Len(t, w.lightConfigs, 1)
	assert.Equal(t, uint32(512), w.shadowMapSize)
	assert.Equal(t, camera.ViewpointLight, w.viewpoint.Kind)
	assert.Equal(t, 1, w.viewpoint.Light)
	assert.True(t, w.showShadows)
}
