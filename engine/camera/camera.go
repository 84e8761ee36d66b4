// package camera provides the default scene camera and the projection helpers
// shared by every view in the engine. All projections target WebGPU clip space
// (z in [0, 1]); mathgl emits OpenGL clip space (z in [-1, 1]), so each
// projection is multiplied by a fixed correction matrix.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default scene camera parameters. The eye is fixed below and behind the scene
// origin with +Z up, matching the shadow demo scene layout.
const (
	// DefaultFov is the vertical field of view of the default camera in radians.
	DefaultFov = float32(math.Pi / 4)

	// DefaultNear is the near clipping plane of the default camera.
	DefaultNear float32 = 1.0

	// DefaultFar is the far clipping plane of the default camera.
	DefaultFar float32 = 200.0
)

var (
	defaultEye    = mgl32.Vec3{3.0, -20.0, 6.0}
	defaultTarget = mgl32.Vec3{0, 0, 0}
	defaultUp     = mgl32.Vec3{0, 0, 1}
)

// clipCorrection maps OpenGL clip space (z in [-1, 1]) to WebGPU clip space
// (z in [0, 1]). Column-major.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective creates a perspective projection matrix targeting WebGPU clip space.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return clipCorrection.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// Ortho creates an orthographic projection matrix targeting WebGPU clip space.
//
// Parameters:
//   - left, right: x extents of the view volume
//   - bottom, top: y extents of the view volume
//   - near, far: z extents of the view volume
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	return clipCorrection.Mul4(mgl32.Ortho(left, right, bottom, top, near, far))
}

// ProjectionView returns the default scene camera's combined projection-view
// matrix for the given aspect ratio. The viewpoint is fixed; only the aspect
// ratio varies (it must track the surface width/height on resize).
//
// Parameters:
//   - aspect: viewport aspect ratio (width/height)
//
// Returns:
//   - mgl32.Mat4: the projection-view matrix
func ProjectionView(aspect float32) mgl32.Mat4 {
	projection := Perspective(DefaultFov, aspect, DefaultNear, DefaultFar)
	view := mgl32.LookAtV(defaultEye, defaultTarget, defaultUp)
	return projection.Mul4(view)
}
