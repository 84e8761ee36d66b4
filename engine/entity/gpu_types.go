package entity

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GPUEntity mirrors the per-entity uniform block consumed by the shaders.
// Layout (std140-compatible, 80 bytes):
//
//	offset  0: Model [16]float32 — world transform, column-major
//	offset 64: Color [4]float32  — base color, linear RGBA
type GPUEntity struct {
	Model [16]float32
	Color [4]float32
}

// GPUEntitySize is the byte size of one GPUEntity uniform block. Arena slots
// are at least this large; the bind group binds exactly this many bytes at
// each dynamic offset.
const GPUEntitySize = 80

// pack snapshots the entity's current transform and color into the uniform
// representation.
func (e *Entity) pack() GPUEntity {
	var g GPUEntity
	m := e.transform
	copy(g.Model[:], m[:])
	g.Color = [4]float32{e.color.X(), e.color.Y(), e.color.Z(), e.color.W()}
	return g
}

// Config describes one entity to build into a Set.
type Config struct {
	// Geometry is the mesh to upload. Required.
	Geometry Geometry
	// Transform is the initial world transform. A zero value is replaced by
	// the identity.
	Transform mgl32.Mat4
	// Color is the base color in linear RGBA.
	Color mgl32.Vec4
	// RotationAxis is the axis the entity spins around each update, in world
	// space. A zero vector disables rotation.
	RotationAxis mgl32.Vec3
	// RotationSpeed is the per-update rotation in degrees.
	RotationSpeed float32
}

// DefaultConfigs returns the stock scene: a ground plane of half-extent 10
// and four cubes hovering above it, each with its own scale, tilt and spin.
//
// Returns:
//   - []Config: the scene entity configurations, plane first
func DefaultConfigs() []Config {
	cube := CubeGeometry()

	configs := []Config{
		{
			Geometry:  PlaneGeometry(10),
			Transform: mgl32.Ident4(),
			Color:     mgl32.Vec4{1, 1, 1, 1},
		},
	}

	cubeDescs := []struct {
		offset mgl32.Vec3
		angle  float32
		scale  float32
		speed  float32
	}{
		{mgl32.Vec3{-2, -2, 2}, 10, 0.7, 0.1},
		{mgl32.Vec3{2, -2, 2}, 50, 1.3, 0.2},
		{mgl32.Vec3{-2, 2, 2}, 140, 1.1, 0.3},
		{mgl32.Vec3{2, 2, 2}, 210, 0.9, 0.4},
	}

	for _, d := range cubeDescs {
		axis := d.offset.Normalize()
		transform := mgl32.Translate3D(d.offset.X(), d.offset.Y(), d.offset.Z()).
			Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(d.angle), axis)).
			Mul4(mgl32.Scale3D(d.scale, d.scale, d.scale))
		configs = append(configs, Config{
			Geometry:      cube,
			Transform:     transform,
			Color:         mgl32.Vec4{0, 1, 0, 1},
			RotationAxis:  axis,
			RotationSpeed: d.speed,
		})
	}

	return configs
}
