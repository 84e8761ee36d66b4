// package light owns the scene's shadow-casting lights. The Set is an ordered,
// fixed-size sequence: a light's position in the sequence is both its layer in
// the shadow depth array and the instance index used to select its matrix
// during the shadow pass.
package light

import (
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/umbra3d/umbra/engine/camera"
)

// Default projection parameters for a light's shadow frustum.
const (
	// DefaultFov is the default vertical field of view of a light's shadow
	// projection in radians.
	DefaultFov = float32(math.Pi / 3)

	// DefaultNear is the default near plane of a light's shadow projection.
	DefaultNear float32 = 1.0

	// DefaultFar is the default far plane of a light's shadow projection.
	DefaultFar float32 = 60.0
)

var lightUp = mgl32.Vec3{0, 0, 1}

// Config describes one shadow-casting light at construction time.
type Config struct {
	// Position is the light's world-space position.
	Position mgl32.Vec3

	// Color is the light's RGB color.
	Color mgl32.Vec3

	// Fov is the vertical field of view of the shadow projection in radians.
	// Zero selects DefaultFov.
	Fov float32

	// Near and Far are the shadow projection clip planes. Zero selects the
	// package defaults.
	Near, Far float32
}

// Light is a single shadow-casting light. It owns a depth-texture view that
// the shadow pass renders into and the forward pass samples as one layer of
// the shadow array texture.
type Light struct {
	position mgl32.Vec3
	color    mgl32.Vec3
	fov      float32
	near     float32
	far      float32

	projectionView mgl32.Mat4
	dirty          bool

	target *wgpu.TextureView
}

// New creates a Light from a config and the depth view it renders into.
// The projection-view matrix is computed immediately.
//
// Parameters:
//   - cfg: the light configuration; zero projection fields select defaults
//   - target: the per-layer depth view this light renders its shadow map into
//
// Returns:
//   - *Light: the light
func New(cfg Config, target *wgpu.TextureView) *Light {
	l := &Light{
		position: cfg.Position,
		color:    cfg.Color,
		fov:      cfg.Fov,
		near:     cfg.Near,
		far:      cfg.Far,
		target:   target,
	}
	if l.fov == 0 {
		l.fov = DefaultFov
	}
	if l.near == 0 {
		l.near = DefaultNear
	}
	if l.far == 0 {
		l.far = DefaultFar
	}
	l.refresh()
	return l
}

// Position returns the light's world-space position.
//
// Returns:
//   - mgl32.Vec3: the position
func (l *Light) Position() mgl32.Vec3 {
	return l.position
}

// SetPosition moves the light. The projection-view matrix is recomputed on the
// next Set.Update, before any shadow pass for the light is recorded.
//
// Parameters:
//   - position: the new world-space position
func (l *Light) SetPosition(position mgl32.Vec3) {
	l.position = position
	l.dirty = true
}

// Color returns the light's RGB color.
//
// Returns:
//   - mgl32.Vec3: the color
func (l *Light) Color() mgl32.Vec3 {
	return l.color
}

// ProjectionView returns the light's current projection-view matrix.
//
// Returns:
//   - mgl32.Mat4: the combined projection-view matrix
func (l *Light) ProjectionView() mgl32.Mat4 {
	return l.projectionView
}

// Target returns the depth view the light's shadow map is rendered into.
//
// Returns:
//   - *wgpu.TextureView: the per-layer depth view
func (l *Light) Target() *wgpu.TextureView {
	return l.target
}

// refresh recomputes the projection-view matrix from the current position.
// The light always looks at the scene origin.
func (l *Light) refresh() {
	projection := camera.Perspective(l.fov, 1.0, l.near, l.far)
	view := mgl32.LookAtV(l.position, mgl32.Vec3{0, 0, 0}, lightUp)
	l.projectionView = projection.Mul4(view)
	l.dirty = false
}
