// package world wires the whole frame together: the shadow material, the
// light and entity sets, and the two render passes, driven by a single Render
// call per frame.
package world

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/umbra3d/umbra/engine/camera"
	"github.com/umbra3d/umbra/engine/entity"
	"github.com/umbra3d/umbra/engine/gpu"
	"github.com/umbra3d/umbra/engine/light"
	"github.com/umbra3d/umbra/engine/material"
	"github.com/umbra3d/umbra/engine/pass"
)

// World owns the scene and renders it. All methods must be called from the
// thread that owns the GPU context; a frame is recorded and submitted as a
// whole by Render.
type World interface {
	// Render records and submits one frame: shadow maps are baked first, then
	// either the lit scene or the shadow debug overlay is drawn into the
	// surface. Surface acquisition failure is fatal for the frame and is
	// returned unretried.
	//
	// Returns:
	//   - error: an error if recording, submission, or acquisition fails
	Render() error

	// Resize adapts the world to a new surface size: the surface is
	// reconfigured, the screen depth target recreated, and the camera aspect
	// ratio updated.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	//
	// Returns:
	//   - error: an error if depth recreation or the projection upload fails
	Resize(width, height int) error

	// SetViewpoint switches the camera the forward pass renders from.
	//
	// Parameters:
	//   - v: the new viewpoint
	//
	// Returns:
	//   - error: an error if the projection upload fails
	SetViewpoint(v camera.Viewpoint) error

	// Viewpoint returns the current viewpoint.
	//
	// Returns:
	//   - camera.Viewpoint: the active viewpoint
	Viewpoint() camera.Viewpoint

	// SetShadowDebug toggles the shadow map overlay. While enabled, frames
	// show the selected shadow map layer instead of the lit scene.
	//
	// Parameters:
	//   - enabled: whether the overlay is shown
	SetShadowDebug(enabled bool)

	// ShadowDebug reports whether the overlay is enabled.
	//
	// Returns:
	//   - bool: true if the overlay is shown
	ShadowDebug() bool

	// SetDebugLayer selects which shadow map layer the overlay shows.
	//
	// Parameters:
	//   - layer: layer index, 0 <= layer < LightCount
	//
	// Returns:
	//   - error: an error if layer is out of range or the upload fails
	SetDebugLayer(layer int) error

	// DebugLayer returns the layer the overlay currently shows.
	//
	// Returns:
	//   - int: the selected layer index
	DebugLayer() int

	// CycleDebugLayer moves the overlay selection by delta, wrapping at both
	// ends.
	//
	// Parameters:
	//   - delta: steps to move, negative for backwards
	//
	// Returns:
	//   - error: an error if the upload fails
	CycleDebugLayer(delta int) error

	// LightCount returns the number of lights (and shadow map layers).
	//
	// Returns:
	//   - int: the light count
	LightCount() int

	// Release frees every GPU resource the world owns. The world must not be
	// used afterwards.
	Release()
}

// worldImpl is the renderer-backed implementation of the World interface.
type worldImpl struct {
	ctx gpu.Context

	shader      *wgpu.ShaderModule
	material    *material.ShadowMaterial
	lights      *light.Set
	entities    *entity.Set
	scene       pass.Scene
	shadowPass  *pass.ShadowPass
	forwardPass *pass.ForwardPass

	// Recreated on every resize.
	screenDepth *wgpu.TextureView

	viewpoint   camera.Viewpoint
	showShadows bool

	// Construction-time configuration, applied by builder options.
	lightConfigs  []light.Config
	entityConfigs []entity.Config
	shadowMapSize uint32
}

var _ World = &worldImpl{}

// New builds the world on the given GPU context: the shared shader module,
// the shadow material with one layer per light, the light and entity sets,
// both passes, and the screen depth target.
//
// Parameters:
//   - ctx: the GPU context to build on
//   - options: variadic list of WorldBuilderOption functions
//
// Returns:
//   - World: the constructed world
//   - error: an error if any resource fails to build
func New(ctx gpu.Context, options ...WorldBuilderOption) (World, error) {
	w := &worldImpl{
		ctx:           ctx,
		viewpoint:     camera.DefaultViewpoint(),
		lightConfigs:  light.DefaultConfigs(),
		entityConfigs: entity.DefaultConfigs(),
		shadowMapSize: material.DefaultShadowMapSize,
	}
	for _, opt := range options {
		opt(w)
	}

	shader, err := pass.NewShaderModule(ctx)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	w.shader = shader

	mat, err := material.NewShadowMaterial(ctx, shader, len(w.lightConfigs),
		material.WithShadowMapSize(w.shadowMapSize))
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("world: %w", err)
	}
	w.material = mat

	lights, err := light.NewSet(ctx, w.lightConfigs, mat.LayerViews())
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("world: %w", err)
	}
	w.lights = lights

	entities, err := entity.NewSet(ctx, w.entityConfigs)
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("world: %w", err)
	}
	w.entities = entities
	w.scene = pass.SceneFrom(entities)

	shadowPass, err := pass.NewShadowPass(ctx, shader, lights, entities.BindGroupLayout())
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("world: %w", err)
	}
	w.shadowPass = shadowPass

	forwardPass, err := pass.NewForwardPass(ctx, shader, lights, mat, entities.BindGroupLayout())
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("world: %w", err)
	}
	w.forwardPass = forwardPass

	config := ctx.Config()
	depth, err := ctx.CreateDepthTexture(config.Width, config.Height)
	if err != nil {
		w.Release()
		return nil, fmt.Errorf("world: %w", err)
	}
	w.screenDepth = depth

	if err := w.refreshProjection(); err != nil {
		w.Release()
		return nil, err
	}

	return w, nil
}

// refreshProjection resolves the current viewpoint against the surface aspect
// ratio and uploads the result to the forward pass.
func (w *worldImpl) refreshProjection() error {
	config := w.ctx.Config()
	aspect := float32(config.Width) / float32(config.Height)
	pv := camera.Resolve(w.viewpoint, aspect, w.lights.ProjectionViews())
	if err := w.forwardPass.UpdateProjectionView(w.ctx, pv); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

func (w *worldImpl) Render() error {
	if err := w.lights.Update(w.ctx); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := w.entities.Update(w.ctx); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	// A light viewpoint tracks the light, so its matrix is re-resolved every
	// frame; the scene camera only changes on resize.
	if w.viewpoint.Kind == camera.ViewpointLight {
		if err := w.refreshProjection(); err != nil {
			return err
		}
	}

	encoder, err := w.ctx.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("world: failed to create command encoder: %w", err)
	}
	defer encoder.Release()
	enc := pass.WrapEncoder(encoder)

	if err := w.shadowPass.Record(enc, w.material.LayerViews(), w.scene); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	frame, err := w.ctx.AcquireFrame()
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}

	cmd, err := w.renderToSurface(enc, frame)
	if err != nil {
		return err
	}
	defer cmd.Release()

	w.ctx.Queue().Submit(cmd)
	w.ctx.Present()
	return nil
}

// renderToSurface draws into the acquired frame and finishes the encoder. On
// failure the held frame is dropped unpresented so the next AcquireFrame is
// not blocked by a stale image.
func (w *worldImpl) renderToSurface(enc pass.Encoder, frame *wgpu.TextureView) (*wgpu.CommandBuffer, error) {
	// The overlay and the lit scene are mutually exclusive per frame.
	var err error
	if w.showShadows {
		err = w.forwardPass.RecordDebug(enc, frame, w.screenDepth, w.material)
	} else {
		err = w.forwardPass.Record(enc, frame, w.screenDepth, w.scene)
	}
	if err != nil {
		w.ctx.DropFrame()
		return nil, fmt.Errorf("world: %w", err)
	}

	cmd, err := enc.Finish(nil)
	if err != nil {
		w.ctx.DropFrame()
		return nil, fmt.Errorf("world: failed to finish command encoder: %w", err)
	}
	return cmd, nil
}

func (w *worldImpl) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		// Minimized; keep the old targets until a real size arrives.
		return nil
	}

	w.ctx.Resize(width, height)

	if w.screenDepth != nil {
		w.screenDepth.Release()
		w.screenDepth = nil
	}
	depth, err := w.ctx.CreateDepthTexture(uint32(width), uint32(height))
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	w.screenDepth = depth

	return w.refreshProjection()
}

func (w *worldImpl) SetViewpoint(v camera.Viewpoint) error {
	w.viewpoint = v
	return w.refreshProjection()
}

func (w *worldImpl) Viewpoint() camera.Viewpoint {
	return w.viewpoint
}

func (w *worldImpl) SetShadowDebug(enabled bool) {
	w.showShadows = enabled
}

func (w *worldImpl) ShadowDebug() bool {
	return w.showShadows
}

func (w *worldImpl) SetDebugLayer(layer int) error {
	return w.material.SetLayer(w.ctx, layer)
}

func (w *worldImpl) DebugLayer() int {
	return w.material.Layer()
}

func (w *worldImpl) CycleDebugLayer(delta int) error {
	next := wrapLayer(w.material.Layer(), delta, w.lights.Count())
	return w.SetDebugLayer(next)
}

func (w *worldImpl) LightCount() int {
	return w.lights.Count()
}

func (w *worldImpl) Release() {
	if w.screenDepth != nil {
		w.screenDepth.Release()
		w.screenDepth = nil
	}
	if w.forwardPass != nil {
		w.forwardPass.Release()
		w.forwardPass = nil
	}
	if w.shadowPass != nil {
		w.shadowPass.Release()
		w.shadowPass = nil
	}
	if w.entities != nil {
		w.entities.Release()
		w.entities = nil
	}
	if w.lights != nil {
		w.lights.Release()
		w.lights = nil
	}
	if w.material != nil {
		w.material.Release()
		w.material = nil
	}
	if w.shader != nil {
		w.shader.Release()
		w.shader = nil
	}
}

// wrapLayer moves a layer index by delta with wraparound in [0, count).
func wrapLayer(current, delta, count int) int {
	if count <= 0 {
		return 0
	}
	next := (current + delta) % count
	if next < 0 {
		next += count
	}
	return next
}
