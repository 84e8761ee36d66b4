package gpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/umbra3d/umbra/common"
)

// DepthFormat is the depth texture format used for every depth target in the
// engine: the per-light shadow maps, the shadow array texture they alias, and
// the screen-space depth target of the forward pass.
const DepthFormat = wgpu.TextureFormatDepth32Float

// Context provides the GPU collaborators the rendering core depends on: the
// device for resource and pipeline creation, the queue for submission, the
// presentable surface, and the current surface configuration.
//
// A Context is created once per window and owns the wgpu instance, adapter,
// device, and queue for its lifetime. All methods must be called from the
// thread that created the Context.
type Context interface {
	// Device returns the wgpu device for resource and pipeline creation.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the command queue used for submission and buffer writes.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// Config returns the current surface configuration (width, height, format).
	// The returned pointer reflects the latest Resize.
	//
	// Returns:
	//   - *wgpu.SurfaceConfiguration: the active surface configuration
	Config() *wgpu.SurfaceConfiguration

	// Resize reconfigures the surface for a new client area size.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// AcquireFrame acquires the next presentable surface image and returns a
	// view of it. Acquisition failure is fatal for the current frame: the
	// error propagates to the caller and no retry is attempted. The acquired
	// image is held until the matching Present call.
	//
	// Returns:
	//   - *wgpu.TextureView: view of the acquired surface image
	//   - error: an error if the surface image could not be acquired
	AcquireFrame() (*wgpu.TextureView, error)

	// Present presents the currently acquired surface image and releases it.
	// No-op when no frame is held.
	Present()

	// DropFrame releases the currently acquired surface image without
	// presenting it, so a failed frame does not block the next AcquireFrame.
	// No-op when no frame is held.
	DropFrame()

	// CreateDepthTexture creates a DepthFormat render-attachment texture of
	// the given size and returns a view of it. Used for the screen-space
	// depth target, which is recreated on every resize.
	//
	// Parameters:
	//   - width: texture width in texels
	//   - height: texture height in texels
	//
	// Returns:
	//   - *wgpu.TextureView: the depth texture view
	//   - error: an error if texture creation fails
	CreateDepthTexture(width, height uint32) (*wgpu.TextureView, error)

	// WriteBuffer writes raw bytes into a GPU buffer at the given offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: byte offset into the buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error

	// WriteMat4 writes a 4x4 matrix into a GPU buffer at offset 0.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - m: the matrix to upload
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	WriteMat4(buf *wgpu.Buffer, m *mgl32.Mat4) error

	// WriteUint32 writes a single uint32 into a GPU buffer at offset 0.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - v: the value to upload
	//
	// Returns:
	//   - error: an error if the queue rejects the write
	WriteUint32(buf *wgpu.Buffer, v uint32) error

	// UniformAlignment returns the minimum uniform-buffer offset alignment the
	// device guarantees. Dynamic-offset uniform slots must be multiples of it.
	//
	// Returns:
	//   - uint64: the alignment in bytes
	UniformAlignment() uint64

	// Release frees the GPU objects owned by the context. The context must not
	// be used afterwards.
	Release()
}

// gpuContext is the wgpu-backed implementation of the Context interface.
type gpuContext struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceConfig *wgpu.SurfaceConfiguration
	presentMode   wgpu.PresentMode

	// Held between AcquireFrame and Present.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	forceFallbackAdapter bool
}

var _ Context = &gpuContext{}

// NewContext creates a Context for the given surface descriptor, typically
// obtained from window.Window.SurfaceDescriptor(). GPU adapter or device
// acquisition failure is unrecoverable and panics, matching the construction
// contract of the rest of the engine.
//
// Parameters:
//   - surfaceDescriptor: the platform-specific surface descriptor
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - options: variadic list of ContextBuilderOption functions
//
// Returns:
//   - Context: the configured GPU context
func NewContext(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...ContextBuilderOption) Context {
	runtime.LockOSThread()

	c := &gpuContext{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(c)
	}

	c.instance = wgpu.CreateInstance(nil)
	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	c.device = device
	c.queue = device.GetQueue()

	c.Resize(width, height)
	return c
}

func (c *gpuContext) Device() *wgpu.Device {
	return c.device
}

func (c *gpuContext) Queue() *wgpu.Queue {
	return c.queue
}

func (c *gpuContext) Config() *wgpu.SurfaceConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaceConfig
}

func (c *gpuContext) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	capabilities := c.surface.GetCapabilities(c.adapter)

	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      capabilities.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	}
	c.surface.Configure(c.adapter, c.device, config)
	c.surfaceConfig = config
}

func (c *gpuContext) AcquireFrame() (*wgpu.TextureView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A still-held image means the previous frame was never presented; a
	// second acquire would trip wgpu validation.
	if c.frameSurface != nil {
		return nil, fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := c.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}

	c.frameSurface = surfaceTexture
	c.frameView = view
	return view, nil
}

func (c *gpuContext) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameSurface == nil {
		return
	}

	c.surface.Present()

	c.frameView.Release()
	c.frameView = nil
	c.frameSurface.Release()
	c.frameSurface = nil
}

func (c *gpuContext) DropFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameSurface == nil {
		return
	}

	c.frameView.Release()
	c.frameView = nil
	c.frameSurface.Release()
	c.frameSurface = nil
}

func (c *gpuContext) CreateDepthTexture(width, height uint32) (*wgpu.TextureView, error) {
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Screen Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture: %w", err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create depth texture view: %w", err)
	}
	return view, nil
}

func (c *gpuContext) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	return c.queue.WriteBuffer(buf, offset, data)
}

func (c *gpuContext) WriteMat4(buf *wgpu.Buffer, m *mgl32.Mat4) error {
	return c.queue.WriteBuffer(buf, 0, common.Mat4Bytes(m))
}

func (c *gpuContext) WriteUint32(buf *wgpu.Buffer, v uint32) error {
	return c.queue.WriteBuffer(buf, 0, common.StructToBytes(&v))
}

func (c *gpuContext) UniformAlignment() uint64 {
	return uint64(wgpu.DefaultLimits().MinUniformBufferOffsetAlignment)
}

func (c *gpuContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameView != nil {
		c.frameView.Release()
		c.frameView = nil
	}
	if c.frameSurface != nil {
		c.frameSurface.Release()
		c.frameSurface = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
