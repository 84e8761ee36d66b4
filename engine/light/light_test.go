package light

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPULightSize(t *testing.T) {
	var g GPULight
	assert.Equal(t, uintptr(96), unsafe.Sizeof(g))
}

func TestNewAppliesDefaults(t *testing.T) {
	l := New(Config{Position: mgl32.Vec3{7, -5, 10}}, nil)

	assert.Equal(t, DefaultFov, l.fov)
	assert.Equal(t, DefaultNear, l.near)
	assert.Equal(t, DefaultFar, l.far)
	assert.False(t, l.dirty)
}

func TestProjectionViewReflectsPosition(t *testing.T) {
	l := New(Config{Position: mgl32.Vec3{7, -5, 10}}, nil)
	before := l.ProjectionView()

	l.SetPosition(mgl32.Vec3{-5, 7, 10})
	assert.True(t, l.dirty)

	l.refresh()
	after := l.ProjectionView()
	assert.NotEqual(t, before, after)

	// Moving back must reproduce the original matrix exactly.
	l.SetPosition(mgl32.Vec3{7, -5, 10})
	l.refresh()
	assert.Equal(t, before, l.ProjectionView())
}

func TestPackLayout(t *testing.T) {
	l := New(Config{
		Position: mgl32.Vec3{1, 2, 3},
		Color:    mgl32.Vec3{0.5, 1, 0.5},
	}, nil)

	g := l.pack()
	assert.Equal(t, [16]float32(l.projectionView), g.ProjectionView)
	assert.Equal(t, [4]float32{1, 2, 3, 1}, g.Position)
	assert.Equal(t, [4]float32{0.5, 1, 0.5, 1}, g.Color)
}

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()
	require.Len(t, configs, 2)

	// Order matters: config order is layer order.
	assert.Equal(t, mgl32.Vec3{7, -5, 10}, configs[0].Position)
	assert.Equal(t, mgl32.Vec3{-5, 7, 10}, configs[1].Position)
	assert.NotEqual(t, configs[0].Fov, configs[1].Fov)
}
