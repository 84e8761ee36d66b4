package camera

import "github.com/go-gl/mathgl/mgl32"

// ViewpointKind identifies which matrix a Viewpoint resolves to.
type ViewpointKind int

const (
	// ViewpointDefault selects the fixed default scene camera.
	ViewpointDefault ViewpointKind = iota

	// ViewpointLight selects a light's projection-view matrix, rendering the
	// scene from that light's perspective. Useful for shadow debugging.
	ViewpointLight

	// ViewpointIdentity selects the identity matrix. This is the fallback for
	// out-of-range selectors; the render loop always produces a frame rather
	// than failing on a bad selector.
	ViewpointIdentity
)

// Viewpoint is a closed variant describing the active camera: the default
// scene camera, one light's point of view, or the identity matrix. It replaces
// raw small-integer selection so the resolution rules live in one place.
type Viewpoint struct {
	// Kind selects which matrix source to resolve.
	Kind ViewpointKind

	// Light is the light index used when Kind is ViewpointLight.
	Light int
}

// DefaultViewpoint returns the Viewpoint for the default scene camera.
//
// Returns:
//   - Viewpoint: a ViewpointDefault viewpoint
func DefaultViewpoint() Viewpoint {
	return Viewpoint{Kind: ViewpointDefault}
}

// LightViewpoint returns the Viewpoint for the given light's perspective.
//
// Parameters:
//   - index: the light index
//
// Returns:
//   - Viewpoint: a ViewpointLight viewpoint for the index
func LightViewpoint(index int) Viewpoint {
	return Viewpoint{Kind: ViewpointLight, Light: index}
}

// IdentityViewpoint returns the identity-matrix Viewpoint.
//
// Returns:
//   - Viewpoint: a ViewpointIdentity viewpoint
func IdentityViewpoint() Viewpoint {
	return Viewpoint{Kind: ViewpointIdentity}
}

// FromSelector maps an external small-integer selector onto a Viewpoint:
// 0 selects the default camera, 1 through lightCount select the corresponding
// light (selector 1 = light 0), and any other value falls back to the identity
// viewpoint instead of failing.
//
// Parameters:
//   - selector: the raw selector value from the input collaborator
//   - lightCount: the number of lights in the scene
//
// Returns:
//   - Viewpoint: the resolved viewpoint
func FromSelector(selector int, lightCount int) Viewpoint {
	switch {
	case selector == 0:
		return DefaultViewpoint()
	case selector >= 1 && selector <= lightCount:
		return LightViewpoint(selector - 1)
	default:
		return IdentityViewpoint()
	}
}

// Resolve turns a Viewpoint into a projection-view matrix. A ViewpointLight
// with an out-of-range index resolves to the identity matrix, keeping the
// fallback behavior of FromSelector for viewpoints constructed directly.
//
// Parameters:
//   - v: the viewpoint to resolve
//   - aspect: the surface aspect ratio, used by the default camera
//   - lights: the per-light projection-view matrices, in light order
//
// Returns:
//   - mgl32.Mat4: the projection-view matrix for the viewpoint
func Resolve(v Viewpoint, aspect float32, lights []mgl32.Mat4) mgl32.Mat4 {
	switch v.Kind {
	case ViewpointDefault:
		return ProjectionView(aspect)
	case ViewpointLight:
		if v.Light < 0 || v.Light >= len(lights) {
			return mgl32.Ident4()
		}
		return lights[v.Light]
	default:
		return mgl32.Ident4()
	}
}
