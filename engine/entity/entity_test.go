package entity

import (
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umbra3d/umbra/common"
)

func TestVertexLayout(t *testing.T) {
	layout := VertexLayout()

	assert.Equal(t, uint64(8), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 2)

	pos := layout.Attributes[0]
	assert.Equal(t, uint32(0), pos.ShaderLocation)
	assert.Equal(t, uint64(0), pos.Offset)
	assert.Equal(t, wgpu.VertexFormatSint8x4, pos.Format)

	normal := layout.Attributes[1]
	assert.Equal(t, uint32(1), normal.ShaderLocation)
	assert.Equal(t, uint64(4), normal.Offset)
	assert.Equal(t, wgpu.VertexFormatSint8x4, normal.Format)
}

func TestVertexMatchesLayoutStride(t *testing.T) {
	assert.Equal(t, VertexLayout().ArrayStride, uint64(unsafe.Sizeof(Vertex{})))
}

func TestCubeGeometry(t *testing.T) {
	cube := CubeGeometry()

	assert.Len(t, cube.Vertices, 24)
	assert.Len(t, cube.Indices, 36)
	assert.Equal(t, uint32(36), cube.IndexCount())

	// Every index must address an existing vertex.
	for _, idx := range cube.Indices {
		assert.Less(t, int(idx), len(cube.Vertices))
	}

	// Positions are homogeneous points, normals homogeneous directions.
	for _, v := range cube.Vertices {
		assert.Equal(t, int8(1), v.Pos[3])
		assert.Equal(t, int8(0), v.Normal[3])
	}
}

func TestPlaneGeometry(t *testing.T) {
	plane := PlaneGeometry(10)

	assert.Len(t, plane.Vertices, 4)
	assert.Len(t, plane.Indices, 6)

	for _, v := range plane.Vertices {
		assert.Equal(t, int8(0), v.Pos[2], "plane lies in the XY plane")
		assert.Equal(t, [4]int8{0, 0, 1, 0}, v.Normal)
	}
}

func TestGPUEntitySize(t *testing.T) {
	assert.Equal(t, uintptr(GPUEntitySize), unsafe.Sizeof(GPUEntity{}))
}

func TestPackLayout(t *testing.T) {
	e := &Entity{
		transform: mgl32.Translate3D(1, 2, 3),
		color:     mgl32.Vec4{0.25, 0.5, 0.75, 1},
	}

	block := e.pack()

	// Column-major: the translation lives in the last column.
	assert.Equal(t, float32(1), block.Model[12])
	assert.Equal(t, float32(2), block.Model[13])
	assert.Equal(t, float32(3), block.Model[14])
	assert.Equal(t, [4]float32{0.25, 0.5, 0.75, 1}, block.Color)

	raw := common.StructToBytes(&block)
	assert.Len(t, raw, GPUEntitySize)
}

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()

	require.Len(t, configs, 5)

	plane := configs[0]
	assert.Len(t, plane.Geometry.Vertices, 4)
	assert.Zero(t, plane.RotationSpeed)

	for i, cfg := range configs[1:] {
		assert.Len(t, cfg.Geometry.Vertices, 24, "cube %d", i)
		assert.NotZero(t, cfg.RotationSpeed, "cube %d spins", i)
		assert.InDelta(t, 1.0, cfg.RotationAxis.Len(), 1e-6, "cube %d axis is normalized", i)
	}
}

func TestRotateAdvancesTransform(t *testing.T) {
	e := &Entity{
		transform:     mgl32.Ident4(),
		rotationAxis:  mgl32.Vec3{0, 0, 1},
		rotationSpeed: 90,
	}

	e.rotate()

	assert.True(t, e.dirty)
	// A 90 degree spin about +z maps +x onto +y.
	moved := e.transform.Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, 0, moved.X(), 1e-6)
	assert.InDelta(t, 1, moved.Y(), 1e-6)
}

func TestRotateWithoutSpeedIsInert(t *testing.T) {
	e := &Entity{transform: mgl32.Ident4()}

	e.rotate()

	assert.False(t, e.dirty)
	assert.Equal(t, mgl32.Ident4(), e.transform)
}

func TestDynamicOffsetsAlignToStride(t *testing.T) {
	stride := common.AlignUp(GPUEntitySize, 256)
	s := &Set{slotStride: stride}

	for slot := 0; slot < 5; slot++ {
		e := &Entity{offset: uint32(uint64(slot) * s.slotStride)}
		assert.Zero(t, uint64(e.DynamicOffset())%256, "slot %d offset is aligned", slot)
		assert.Equal(t, uint64(slot)*stride, uint64(e.DynamicOffset()))
	}
}
