package light

import "github.com/go-gl/mathgl/mgl32"

// GPULight is the GPU-aligned representation of a single light in the storage
// buffer the shaders index by instance (shadow pass) or loop over (forward
// pass). Matches the WGSL Light struct layout exactly. Size: 96 bytes.
type GPULight struct {
	ProjectionView [16]float32 // offset  0: combined projection-view matrix, column-major
	Position       [4]float32  // offset 64: world-space position, w unused
	Color          [4]float32  // offset 80: RGB color, w unused
}

// GPULightSize is the byte size of one GPULight element in the storage buffer.
const GPULightSize = 96

// pack builds the GPU representation of the light's current state.
func (l *Light) pack() GPULight {
	return GPULight{
		ProjectionView: [16]float32(l.projectionView),
		Position:       [4]float32{l.position.X(), l.position.Y(), l.position.Z(), 1},
		Color:          [4]float32{l.color.X(), l.color.Y(), l.color.Z(), 1},
	}
}

// DefaultConfigs returns the two-light setup used when no lights are
// configured: one greenish light and one reddish light on opposite sides of
// the scene, with differing frustum widths.
//
// Returns:
//   - []Config: the default light configurations
func DefaultConfigs() []Config {
	return []Config{
		{
			Position: mgl32.Vec3{7, -5, 10},
			Color:    mgl32.Vec3{0.5, 1, 0.5},
			Fov:      DefaultFov,
		},
		{
			Position: mgl32.Vec3{-5, 7, 10},
			Color:    mgl32.Vec3{1, 0.5, 0.5},
			Fov:      float32(mgl32.DegToRad(45)),
		},
	}
}
